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


// Package storage provides the vector store abstraction for profindex.
//
// This package defines the interfaces the ingestion pipeline writes through,
// so the same run can target a hosted index or a local database.
//
// # Constructor Return Type Pattern
//
// Public constructors return interface types:
//
//	store, err := pinecone.NewStore(ctx, cfg)  // returns storage.VectorStore
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Implementations
//
//   - storage/pinecone: Pinecone REST control and data plane
//   - storage/badger: BadgerDB-backed local store for offline runs and tests
//
// # Usage
//
//	store, err := badger.Open("/path/to/db", 384)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	n, err := store.Upsert(ctx, "ns1", vectors)
//
// # Thread Safety
//
// All store implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
