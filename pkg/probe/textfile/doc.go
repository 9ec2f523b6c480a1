// Copyright (c) 2026, Sysdiag Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package textfile reads and parses the text files diagnostic probes
// depend on: /proc entries, /etc configuration, sysfs attributes.
//
// Two access levels are provided. Read degrades failures to explanatory
// strings so probes can embed the result directly as report content.
// Parser returns hard errors for callers that must distinguish a missing
// file from malformed content, such as the system overview.
package textfile
