// Copyright (C) 2024 The PearRay-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package render

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// instruments mirrors what the Observer interface already reports
// in-process, exported a second time through OTel so an operator can point a
// real collector at a long render without wiring a bespoke transport; when
// no MeterProvider is configured these calls are free no-ops.
type instruments struct {
	passes         metric.Int64Counter
	finishedPixels metric.Int64Gauge
}

func newInstruments() instruments {
	meter := otel.Meter("github.com/PearCoding/PearRay-go/internal/render")

	passes, _ := meter.Int64Counter("pearray.render.passes",
		metric.WithDescription("render passes completed"))
	finishedPixels, _ := meter.Int64Gauge("pearray.render.finished_pixels",
		metric.WithDescription("pixels that satisfy the adaptive-stop predicate"))

	return instruments{passes: passes, finishedPixels: finishedPixels}
}
