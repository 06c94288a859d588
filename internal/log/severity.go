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

package log

// Level defines the severity of a log message, ordered the same way
// rfc5424 syslog levels are.
type Level int32

const (
	Emergency Level = 0
	Alert     Level = 1
	Critical  Level = 2
	Error     Level = 3
	Warning   Level = 4
	Notice    Level = 5
	Info      Level = 6
	Debug     Level = 7
)

func (l Level) String() string {
	switch l {
	case Emergency:
		return "emergency"
	case Alert:
		return "alert"
	case Critical:
		return "critical"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Notice:
		return "notice"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// DefaultLevel is the conventional level to pass to WithLevel. Nothing in
// this package applies it implicitly to a Context with no level set.
const DefaultLevel = Info
