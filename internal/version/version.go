// Copyright 2026 Blink Labs Software
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

// Package version holds build information injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/blinklabs-io/vaultgov/internal/version.CommitHash=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

// These variables are set via -ldflags at build time
var (
	Version    = "devel"
	CommitHash = "unknown"
)

func GetVersionString() string {
	return fmt.Sprintf("%s (commit %s)", Version, CommitHash)
}

// GetFullVersionString adds the Go toolchain and platform
func GetFullVersionString() string {
	return fmt.Sprintf(
		"%s\n  Go: %s\n  Platform: %s/%s",
		GetVersionString(),
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
	)
}
