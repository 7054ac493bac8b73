// Package client sends one raw HTTP/1.1 request and decodes the response
// with message.DecodeResponse.
//
// It expects the server to close the connection after responding, as every
// localserver variant does with `Connection: close`:
//
//	resp, err := client.Get(ctx, "127.0.0.1:8080", "/")
//	if err != nil {
//		return err
//	}
//	fmt.Println(resp.StatusCode(), resp.Content())
package client
