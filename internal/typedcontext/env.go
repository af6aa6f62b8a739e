// Copyright 2018 The gg Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package typedcontext

import (
	"os"

	"github.com/scholzdev/ghook/internal/value"
)

// envVars is the fixed set of process environment variables a script's
// `env` object exposes, grounded on value.rs's Value::env_object: a
// variable only appears as a property when it is actually set in the
// process environment, rather than surfacing as an empty string.
var envVars = []string{"USER", "HOME", "PATH", "PWD", "SHELL"}

// NewEnv snapshots the process environment into an "env" Object at
// construction time, the same point value.rs's env_object() reads it.
func NewEnv() *value.Object {
	obj := value.NewObject("env")
	fields := map[string]value.Value{}
	for _, name := range envVars {
		if v, ok := os.LookupEnv(name); ok {
			fields[name] = value.Str(v)
		}
	}
	obj.Properties = fields
	return obj
}
