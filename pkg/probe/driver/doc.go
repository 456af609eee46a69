// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package driver reports kernel driver state.
//
// On Linux it lists loaded modules from /proc/modules and PCI devices under
// /sys/bus/pci/devices that have no bound driver. On Windows it queries
// devices with a non-zero Configuration Manager problem code and joins them
// with Win32_PnPSignedDriver to flag drivers older than two years.
//
// A failed primary query (module list, problem-device query) fails the
// probe. Malformed lines or partially readable sysfs entries degrade it.
package driver
