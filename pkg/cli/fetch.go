package cli

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Raphcal/localserver/pkg/cli/internal/output"
	"github.com/Raphcal/localserver/pkg/client"
	"github.com/Raphcal/localserver/pkg/message"
)

// fetchFlags holds all flags for the fetch command.
type fetchFlags struct {
	method  string
	headers []string
	data    string
	timeout time.Duration
	include bool
	fail    bool
}

// FetchOutput is the --json form of a response.
type FetchOutput struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

func newFetchCommand(root *rootFlags) *cobra.Command {
	f := &fetchFlags{}
	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "Send one request and print the response",
		Long: `Send one HTTP/1.1 request with Connection: close semantics and print the
decoded response. Chunked bodies are decoded.`,
		Example: `  # Print a page
  localserver fetch http://127.0.0.1:8080/index.html

  # Post a form and show the status line and headers
  localserver fetch -X POST -H 'Content-Type: application/x-www-form-urlencoded' \
    -d 'name=Ada' -i http://127.0.0.1:8080/form`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], f, root)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&f.method, "method", "X", message.MethodGet, "Request method")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	fs.StringVarP(&f.data, "data", "d", "", "Request body")
	fs.DurationVar(&f.timeout, "timeout", client.DefaultTimeout, "Overall request timeout")
	fs.BoolVarP(&f.include, "include", "i", false, "Print the status line and headers")
	fs.BoolVarP(&f.fail, "fail", "f", false, "Exit with an error on a 4xx or 5xx status")
	return cmd
}

func runFetch(cmd *cobra.Command, rawURL string, f *fetchFlags, root *rootFlags) error {
	addr, target, err := splitURL(rawURL)
	if err != nil {
		return err
	}

	req := client.NewRequest(strings.ToUpper(f.method), addr, target)
	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: header %q is not 'Name: value'", ErrInvalidFlag, h)
		}
		req.SetHeader(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if f.data != "" {
		req.SetContent(f.data)
	}

	c := client.New(client.WithTimeout(f.timeout))
	resp, err := c.Do(cmd.Context(), addr, req)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch {
	case root.jsonOutput:
		if err := output.JSON(w, FetchOutput{
			Status:  resp.StatusCode(),
			Message: resp.StatusMessage(),
			Headers: resp.HeaderMap(),
			Body:    resp.Content(),
		}); err != nil {
			return err
		}
	case f.include:
		fmt.Fprint(w, resp.String())
	default:
		fmt.Fprint(w, resp.Content())
	}

	if f.fail && resp.StatusCode() >= 400 {
		return fmt.Errorf("%w: %d %s", ErrHTTPStatus, resp.StatusCode(), resp.StatusMessage())
	}
	return nil
}

// splitURL returns the host:port to dial and the request target of an
// http:// URL.
func splitURL(rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q is not an http:// URL", ErrInvalidURL, rawURL)
	}
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "80")
	}
	return addr, u.RequestURI(), nil
}
