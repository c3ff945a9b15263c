// Package rest is a JSON-default layer over httpclient.
//
// Clients send Content-Type: application/json and accept JSON or text.
// Typed helpers decode JSON bodies; GetText returns the body as-is:
//
//	client, err := rest.New(httpclient.Config{BaseURL: "http://localhost:8123/api"})
//
//	health, err := rest.Get[HealthStatus](ctx, client, "/health")
//	reply, err := rest.GetText(ctx, client, "/ai/plan_app/chat/sync",
//	    rest.WithQuery(map[string]string{"message": msg, "chatId": id}))
package rest
