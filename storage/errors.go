// Copyright 2025 Poiesic Systems
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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested index or vector was not found.
	ErrNotFound = errors.New("not found")

	// ErrIndexExists indicates an index with the requested name already exists.
	ErrIndexExists = errors.New("index already exists")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// index dimension.
	ErrDimensionMismatch = errors.New("vector dimension does not match index")

	// ErrInvalidVector indicates a vector without id or values.
	ErrInvalidVector = errors.New("invalid vector")

	// ErrInvalidIndexSpec indicates an index spec with missing or bad fields.
	ErrInvalidIndexSpec = errors.New("invalid index spec")

	// ErrUnsupportedMetadata indicates a metadata value the store cannot hold.
	ErrUnsupportedMetadata = errors.New("unsupported metadata value")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData indicates that data was truncated during reading.
	ErrTruncatedData = errors.New("truncated data")

	// ErrRequestFailed indicates a remote store rejected a request.
	ErrRequestFailed = errors.New("store request failed")
)
