// Package api is the HTTP gateway to the axin AI backend.
//
// A Client carries a fixed base address, a fixed timeout and JSON defaults.
// Its interceptors pass requests and responses through unchanged and log
// failures. Chat streams are returned as unconnected stream.Client values
// that share the gateway's HTTP transport:
//
//	gw, _ := api.New(api.Config{}, logger.WithComponent("api"))
//	sc := gw.PlanChatStream("plan my week", stream.NewChatID())
//	sc.Handle(stream.KindMessage, func(data any) error { ... })
//	sc.Connect()
//	defer sc.Close()
package api
