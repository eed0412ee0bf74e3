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


// Package ai provides abstractions for the embedding services used by profindex.
//
// The package defines the Embedder and AIProvider interfaces, the provider
// configuration and the error values providers report. Callers depend on the
// abstractions; the concrete clients live in sub-packages.
//
// # Implementation Packages
//
//   - ai/cohere: Cohere embed API over REST
//   - ai/openai: OpenAI-compatible APIs through langchaingo (OpenAI, Ollama, vLLM)
//   - ai/mock: Test doubles with deterministic vectors and throttling injection
//
// # Errors
//
// Providers report HTTP failures as *ProviderError, which unwraps to
// ErrRateLimited, ErrUnauthorized, ErrMalformedRequest or ErrProvider.
// Only ErrRateLimited is worth retrying; the embedding package does so.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithAPIKey(os.Getenv("COHERE_API_KEY")))
//	provider, err := cohere.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vectors, err := provider.Embedder().EmbedTexts(ctx, []string{"Jane Doe teaches in the CS department at State U."})
package ai
