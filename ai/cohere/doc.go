// Package cohere provides an embedding provider for the Cohere embed API.
//
// Texts are embedded with input_type "search_document" by default, which is
// what Cohere expects for content that will later be searched. A 429
// response surfaces as ai.ErrRateLimited; 401 and 403 as ai.ErrUnauthorized.
//
//	config := ai.NewConfig(ai.WithAPIKey(os.Getenv("COHERE_API_KEY")))
//	provider, err := cohere.NewProvider(config)
package cohere
