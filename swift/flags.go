// Copyright 2021 Google Inc. All rights reserved.
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

package swift

import (
	"fmt"
	"strconv"
	"strings"
)

const numThreadsFlag = "-num-threads"

// wholeModuleOptFlags are the swiftc spellings that enable whole module
// optimization.  Any one of them puts the compiler into a mode where all
// sources of the module are handled by a single frontend job.
var wholeModuleOptFlags = []string{
	"-wmo",
	"-whole-module-optimization",
	"-force-single-frontend-invocation",
}

// An InvalidConfigurationError reports a flag value that no swiftc
// invocation would accept.  It aborts planning for the module that supplied
// the flag; nothing is declared for a module that fails this way.
type InvalidConfigurationError struct {
	Flag  string
	Value string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid value %q for flag %s", e.Value, e.Flag)
}

// outputNature describes what a single swiftc invocation will emit for a
// given flag list.  It is computed once per compile by outputNatureOf and
// never modified.
type outputNature struct {
	// emitsMultipleObjects is true when the compile produces one object
	// file per source file rather than a single object for the module.
	emitsMultipleObjects bool

	// emitsPartialModules is true when the compile produces a partial
	// swiftmodule per source file that must be merged later.
	emitsPartialModules bool
}

// outputNatureOf scans flags and determines how many object files and
// whether partial swiftmodules the invocation will emit.
//
// A single-threaded whole-module-optimization compile runs one frontend job
// that produces one object and one swiftmodule.  WMO with -num-threads N
// (N > 1) still runs one frontend job but writes one object per source
// file.  Without WMO each source gets its own frontend job, producing one
// object and one partial swiftmodule per source.  Note the asymmetry: WMO
// never emits partial modules, whatever the thread count.
func outputNatureOf(flags []string) (outputNature, error) {
	wmo := false
	threads := ""
	threadsSeen := false

	for i := 0; i < len(flags); i++ {
		flag := flags[i]
		switch {
		case isWholeModuleOptFlag(flag):
			wmo = true
		case flag == numThreadsFlag:
			// A trailing -num-threads with no value is ignored, the
			// same as swiftc's permissive driver parsing.
			if i+1 < len(flags) {
				threads = flags[i+1]
				threadsSeen = true
				i++
			}
		case strings.HasPrefix(flag, numThreadsFlag+"="):
			threads = flag[len(numThreadsFlag)+1:]
			threadsSeen = true
		}
	}

	threadCount := 1
	if threadsSeen {
		n, err := parseThreadCount(threads)
		if err != nil {
			return outputNature{}, err
		}
		threadCount = n
	}

	return outputNature{
		emitsMultipleObjects: !(wmo && threadCount == 1),
		emitsPartialModules:  !wmo,
	}, nil
}

func isWholeModuleOptFlag(flag string) bool {
	for _, f := range wholeModuleOptFlags {
		if flag == f {
			return true
		}
	}
	return false
}

// parseThreadCount validates a -num-threads value.  swiftc treats zero and
// non-numeric values as driver errors, so planning an action around them
// would only defer the failure to execution time.
func parseThreadCount(value string) (int, error) {
	if value == "" {
		return 0, &InvalidConfigurationError{Flag: numThreadsFlag, Value: value}
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return 0, &InvalidConfigurationError{Flag: numThreadsFlag, Value: value}
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil || n == 0 {
		return 0, &InvalidConfigurationError{Flag: numThreadsFlag, Value: value}
	}
	return n, nil
}

// flagValue returns the value of a flag that takes one, honoring both the
// "-flag value" and "-flag=value" spellings.  When the flag appears more
// than once the last occurrence wins, matching compiler semantics.  A
// trailing flag with no value is treated as absent.
func flagValue(flags []string, name string) (string, bool) {
	value := ""
	found := false
	for i := 0; i < len(flags); i++ {
		switch {
		case flags[i] == name:
			if i+1 < len(flags) {
				value = flags[i+1]
				found = true
				i++
			}
		case strings.HasPrefix(flags[i], name+"="):
			value = flags[i][len(name)+1:]
			found = true
		}
	}
	return value, found
}
