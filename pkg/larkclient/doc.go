// Package larkclient provides the entry point for constructing an open
// platform client that implements the lark.Client interface.
//
// Quick start
//
//	ctx := context.Background()
//
//	cli, err := larkclient.NewWithToken(ctx, "https://open.feishu.cn", "t-xxx")
//	if err != nil { log.Fatal(err) }
//
//	it, err := cli.IM().ListChatsWithIterator(ctx, &lark.ListChatsRequest{PageSize: 50})
//	if err != nil { log.Fatal(err) }
//
//	for page, err := range it.Seq2(ctx) {
//	  if err != nil { log.Fatal(err) }
//	  for _, chat := range page.Items {
//	    fmt.Println(chat.ChatID, chat.Name)
//	  }
//	}
//
// An empty endpoint selects lark.DefaultEndpoint. The client never obtains
// or refreshes tokens; pass a tenant or user access token you already hold.
package larkclient
