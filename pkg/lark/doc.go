// Package lark holds the public types of the open platform client: the
// request and page model, the cursor iterator shared by every list
// endpoint, errors, logging and interceptors.
//
// List endpoints return a page remainder R together with the pagination
// controls has_more and page_token (or next_page_token on older endpoints).
// An Iterator hides the cursor:
//
//	it, _ := client.IM().ListChatsWithIterator(ctx, &lark.ListChatsRequest{})
//	for page := range it.All(ctx) {
//		if page == nil {
//			break // the fetch failed, see it.Err()
//		}
//		...
//	}
//
// Seq2 and Step report failures explicitly and should be preferred in new
// code. Use the single call variants, or CollectPages, when a failure must
// abort the caller.
package lark
