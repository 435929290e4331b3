// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sensors is a container for environmental sensor drivers.
//
// Each driver lives in its own package and talks to the hardware through
// periph.io buses.
package sensors
