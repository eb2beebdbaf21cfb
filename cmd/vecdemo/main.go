package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rzpsarthak13/mssqlvec/pkg/embed"
	"github.com/rzpsarthak13/mssqlvec/pkg/filter"
	"github.com/rzpsarthak13/mssqlvec/pkg/mssqlvec"
)

// Article is the demo record. The schema is derived from the struct tags.
type Article struct {
	ID        int64     `mssqlvec:"key"`
	Title     string    `mssqlvec:"data,indexed"`
	Body      string    `mssqlvec:"data"`
	Published bool      `mssqlvec:"data"`
	Embedding []float32 `mssqlvec:"vector,dim=64"`
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// 1. Configure the store
	config := mssqlvec.DefaultConfig()
	if *configPath != "" {
		loaded, err := mssqlvec.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		config = loaded
	} else {
		config.Database.Host = "localhost"
		config.Database.Port = 1433
		config.Database.Database = "vectors"
		config.Database.Username = "sa"
		config.Database.Password = os.Getenv("MSSQL_PASSWORD")
	}

	store, err := mssqlvec.Open(config)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 2. Open the collection and make sure its table exists
	embedder := embed.HashEmbedder{Dim: 64}
	articles, err := mssqlvec.NewCollection[Article](store, "Articles",
		mssqlvec.WithEmbedder(embedder))
	if err != nil {
		log.Fatalf("Failed to open collection: %v", err)
	}
	if err := articles.EnsureTable(ctx); err != nil {
		log.Fatalf("Failed to ensure table: %v", err)
	}

	// 3. Upsert a few records, embedding the bodies on the way in
	records := []*Article{
		{ID: 1, Title: "Intro to vectors", Body: "Vectors measure semantic similarity.", Published: true},
		{ID: 2, Title: "Batch writes", Body: "Large batches are chunked and run in one transaction.", Published: true},
		{ID: 3, Title: "Draft notes", Body: "Unfinished thoughts on indexing.", Published: false},
	}
	vectors := make([]map[string][]float32, len(records))
	for i, rec := range records {
		vec, err := embedder.Embed(ctx, rec.Body)
		if err != nil {
			log.Fatalf("Failed to embed body: %v", err)
		}
		vectors[i] = map[string][]float32{"Embedding": vec}
	}
	keys, err := articles.UpsertWithVectors(ctx, records, vectors)
	if err != nil {
		log.Fatalf("Failed to upsert: %v", err)
	}
	log.Printf("Upserted %d articles", len(keys))

	// 4. Search for published articles near a query
	results, err := articles.SearchText(ctx, "how do batch writes work?", &mssqlvec.SearchOptions{
		Top:    2,
		Filter: filter.Eq("Published", true),
	})
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}
	for _, hit := range results {
		fmt.Printf("%.4f  %s\n", hit.Score, hit.Record.Title)
	}

	// 5. Show what collections exist
	names, err := store.ListCollections(ctx)
	if err != nil {
		log.Fatalf("Failed to list collections: %v", err)
	}
	log.Printf("Collections: %v", names)
}
