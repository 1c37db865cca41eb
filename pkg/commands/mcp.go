package commands

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/somnium/pkg/listen"
	"tableflip.dev/somnium/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	var (
		transport   string
		httpHost    string
		httpPort    int
		httpPath    string
		httpTLSCert string
		httpTLSKey  string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes the dream journal, its collections and
insights through the Model Context Protocol. Premium rules apply to tools the
same way they apply to the CLI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQuietEnv(cmd, func(ctx context.Context, e *env) error {
				path := strings.TrimSpace(httpPath)
				if path == "" {
					path = "/mcp"
				}
				if !strings.HasPrefix(path, "/") {
					path = "/" + path
				}

				runner := mcp.Runner{
					App:              e.service,
					Name:             "somnium",
					Version:          version,
					HTTPEndpointPath: path,
					HTTPServerCert:   strings.TrimSpace(httpTLSCert),
					HTTPServerKey:    strings.TrimSpace(httpTLSKey),
				}

				switch strings.ToLower(strings.TrimSpace(transport)) {
				case "", string(mcp.TransportHTTP):
					host := strings.TrimSpace(httpHost)
					if host == "" {
						host = "127.0.0.1"
					}
					port := httpPort
					if port < 0 || port > 65535 {
						return fmt.Errorf("invalid http-port %d", port)
					}

					addr := net.JoinHostPort(host, strconv.Itoa(port))
					runner.Transport = mcp.TransportHTTP
					runner.HTTPListenAddr = addr
					scheme := "http"
					if runner.HTTPServerCert != "" && runner.HTTPServerKey != "" {
						scheme = "https"
					}
					runner.OnHTTPListening = func(a net.Addr) {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP HTTP server listening on %s\n",
							listen.URL(scheme, addr, a, path))
					}
				case string(mcp.TransportStdio):
					runner.Transport = mcp.TransportStdio
				default:
					return fmt.Errorf("unsupported transport %q (expected http or stdio)", transport)
				}

				e.log.Info().Str("transport", string(runner.Transport)).Msg("starting MCP server")
				return runner.Do(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportHTTP), "transport to use: http or stdio")
	cmd.Flags().StringVar(&httpHost, "http-host", "127.0.0.1", "host/interface for HTTP transport")
	cmd.Flags().IntVar(&httpPort, "http-port", 8080, "port for HTTP transport (use 0 for random)")
	cmd.Flags().StringVar(&httpPath, "http-path", "/mcp", "HTTP endpoint path")
	cmd.Flags().StringVar(&httpTLSCert, "http-tls-cert", "", "TLS certificate file for HTTPS")
	cmd.Flags().StringVar(&httpTLSKey, "http-tls-key", "", "TLS private key file for HTTPS")

	topLevel.AddCommand(cmd)
}
