// Package forcedaligner adapts HARDY's word-level timing source to an
// external forced-alignment backend reached over MCP (Model Context
// Protocol). It owns connection lifecycle and the single tool call that
// turns raw audio into a word sequence; it knows nothing about
// transcript segments or the alignment algorithm itself.
package forcedaligner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sammywachtel/hardy-align/internal/align"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

// Config describes how to reach the forced-alignment MCP server.
type Config struct {
	ServerURL string
	AuthToken string
	Timeout   time.Duration
}

// mcpSession is the subset of *mcp-go/client.Client that Client actually
// calls. Connect talks to it through this interface rather than the
// concrete type so tests can substitute a fake round-tripper instead of
// standing up a live MCP server.
type mcpSession interface {
	Start(ctx context.Context) error
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// newMCPSession builds the real streamable-HTTP MCP session. Tests
// replace this var to hand Connect a fake mcpSession instead.
var newMCPSession = func(serverURL, authToken string, timeout time.Duration) (mcpSession, error) {
	headers := map[string]string{}
	if authToken != "" {
		headers["Authorization"] = "Bearer " + authToken
	}
	return client.NewStreamableHttpClient(serverURL,
		transport.WithHTTPHeaders(headers),
		transport.WithHTTPTimeout(timeout),
		transport.WithHTTPBasicClient(&http.Client{Timeout: timeout}),
	)
}

// Client is a connection to a forced-alignment MCP server. It is safe
// for concurrent use; callers should Connect once at startup and share
// the client across requests.
type Client struct {
	cfg Config

	mcpClient mcpSession
	ctx       context.Context
	cancel    context.CancelFunc

	mu          sync.RWMutex
	isConnected bool
}

// NewClient builds a Client that has not yet connected.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{cfg: cfg, ctx: ctx, cancel: cancel}
}

// Connect establishes the MCP session and performs the protocol
// handshake. It is a no-op if already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isConnected {
		return nil
	}

	if c.cfg.ServerURL == "" {
		return fmt.Errorf("forcedaligner: no server URL configured")
	}

	mcpClient, err := newMCPSession(c.cfg.ServerURL, c.cfg.AuthToken, c.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("forcedaligner: create MCP client: %w", err)
	}

	if err := mcpClient.Start(c.ctx); err != nil {
		return fmt.Errorf("forcedaligner: start MCP client: %w", err)
	}

	_, err = mcpClient.Initialize(c.ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: "2024-11-05",
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "hardy-align",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		mcpClient.Close()
		return fmt.Errorf("forcedaligner: initialize MCP client: %w", err)
	}

	c.mcpClient = mcpClient
	c.isConnected = true
	logrus.Info("forcedaligner: connected to forced-alignment MCP server")
	return nil
}

// Close disconnects from the MCP server, if connected.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()
	if c.mcpClient == nil {
		return nil
	}
	mcpClient := c.mcpClient
	c.mcpClient = nil
	c.isConnected = false
	return mcpClient.Close()
}

// IsConnected reports whether the MCP session is live.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// alignAudioResponse is the wire shape returned by the align_audio tool.
type alignAudioResponse struct {
	Words []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

// Align sends base64-encoded audio to the forced-alignment backend and
// returns the resulting word-level timing sequence, ordered by start
// time as the backend produced it.
func (c *Client) Align(ctx context.Context, audioBase64 string, languageHint string) ([]align.Word, error) {
	c.mu.RLock()
	mcpClient := c.mcpClient
	connected := c.isConnected
	c.mu.RUnlock()

	if !connected || mcpClient == nil {
		return nil, fmt.Errorf("forcedaligner: not connected")
	}

	args := map[string]interface{}{
		"audio_base64": audioBase64,
	}
	if languageHint != "" {
		args["language"] = languageHint
	}

	result, err := mcpClient.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "align_audio",
			Arguments: args,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("forcedaligner: align_audio call: %w", err)
	}

	if result.IsError {
		errorMsg := "unknown error"
		if len(result.Content) > 0 {
			if textContent, ok := mcp.AsTextContent(result.Content[0]); ok {
				errorMsg = textContent.Text
			}
		}
		return nil, fmt.Errorf("forcedaligner: align_audio returned an error: %s", errorMsg)
	}

	if len(result.Content) == 0 {
		return nil, align.ErrNoWords
	}

	textContent, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		return nil, fmt.Errorf("forcedaligner: align_audio result is not text content")
	}

	var parsed alignAudioResponse
	if err := json.Unmarshal([]byte(textContent.Text), &parsed); err != nil {
		return nil, fmt.Errorf("forcedaligner: parse align_audio response: %w", err)
	}

	if len(parsed.Words) == 0 {
		return nil, align.ErrNoWords
	}

	words := make([]align.Word, len(parsed.Words))
	for i, w := range parsed.Words {
		words[i] = align.Word{
			Text:     w.Text,
			StartSec: w.Start,
			EndSec:   w.End,
			Index:    i,
		}
	}
	return words, nil
}
