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

package serializer

import (
	"context"
	"fmt"
	"os"
	"strings"
)

func isURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// ReadSource returns the raw bytes at a local path or http(s) URL. The
// options apply to URL reads only.
func ReadSource(ctx context.Context, path string, opts ...HttpReaderOption) ([]byte, error) {
	if isURL(path) {
		return NewHttpReader(opts...).ReadWithContext(ctx, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// FromBytes decodes data of format f into a new T.
func FromBytes[T any](f Format, data []byte) (*T, error) {
	var v T
	if err := Unmarshal(f, data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FromFile loads a local file or http(s) URL into a new T. The format is
// taken from the extension.
func FromFile[T any](ctx context.Context, path string) (*T, error) {
	data, err := ReadSource(ctx, path)
	if err != nil {
		return nil, err
	}
	v, err := FromBytes[T](FormatFromPath(path), data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return v, nil
}
