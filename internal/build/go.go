// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

//go:build !tinygo

// Package build reports the toolchain a binary or test was built with, for
// code which cannot use build tags directly.
package build

// TinyGo is true when built by TinyGo, whose reflect package lacks features
// that some reference dependencies need.
const TinyGo = false
