// Package concierge embeds the city concierge pipeline in a Go program.
//
// The client talks to Valkey or Redis with the search module directly,
// without the HTTP server. Bring your own embedder:
//
//	client, _ := concierge.New(ctx,
//	    concierge.WithValkey("localhost:6379", ""),
//	    concierge.WithEmbedder(myEmbedder),
//	    concierge.WithVectorDimensions(384),
//	)
//	defer client.Close()
//
//	_, _ = client.Build(ctx, concierge.BuildInput{
//	    Businesses: businesses,
//	    Events:     events,
//	    Mode:       concierge.ModeCombined,
//	})
//
//	ans, _ := client.Ask(ctx, "live music tonight", concierge.TypeAll)
//	fmt.Println(ans.Answer)
package concierge
