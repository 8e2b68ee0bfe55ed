// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

//go:build tinygo

package build

// TinyGo is true when built by TinyGo, whose reflect package lacks features
// that some reference dependencies need.
const TinyGo = true
