// Package pinecone implements the storage interfaces over Pinecone's REST API.
//
// Index administration (create, describe) goes to the control plane at
// api.pinecone.io. Vector writes, fetches and stats go to the index's own
// host, which is looked up from the control plane once per store.
//
//	store, err := pinecone.NewStore(ctx, pinecone.Config{
//	    APIKey:    os.Getenv("PINECONE_API_KEY"),
//	    IndexName: "rag",
//	})
package pinecone
