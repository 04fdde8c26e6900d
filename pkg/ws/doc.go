// Package ws implements the long connection used to receive events without
// a public callback URL.
//
// The client obtains a websocket URL from /callback/ws/endpoint with the
// application's credentials, then exchanges pbbp2 frames over it. Control
// frames carry ping and pong; data frames carry events and card callbacks,
// possibly split into several parts. Every handled data frame is answered
// with the same frame carrying a JSON response and the handling time in the
// biz_rt header.
//
//	client := ws.NewClient(appID, appSecret, ws.HandlerFunc(
//		func(ctx context.Context, event *ws.Event) ([]byte, error) {
//			log.Println(event.EventType(), string(event.Payload))
//			return nil, nil
//		}))
//
//	if err := client.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package ws
