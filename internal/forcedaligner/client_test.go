package forcedaligner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// fakeSession is a hand-rolled double for mcpSession: a fake MCP
// round-tripper that lets Connect/Align be exercised without a live
// server on the wire.
type fakeSession struct {
	startErr     error
	initErr      error
	closeErr     error
	closeCalled  bool
	callToolFunc func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	lastToolCall mcp.CallToolRequest
}

func (f *fakeSession) Start(ctx context.Context) error { return f.startErr }

func (f *fakeSession) Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &mcp.InitializeResult{}, nil
}

func (f *fakeSession) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f.lastToolCall = req
	if f.callToolFunc != nil {
		return f.callToolFunc(ctx, req)
	}
	return textResult(`{"words":[{"text":"hi","start":0,"end":0.4}]}`), nil
}

func (f *fakeSession) Close() error {
	f.closeCalled = true
	return f.closeErr
}

// textResult builds a successful CallToolResult carrying a single text
// content block, mirroring the shape client.go's mcp.AsTextContent
// parses out of a real align_audio response.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

// errorResult builds a tool-level error result, as distinct from a
// transport error: the call succeeds but result.IsError is true.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: message}},
	}
}

func withFakeSession(t *testing.T, fake *fakeSession) {
	t.Helper()
	orig := newMCPSession
	newMCPSession = func(serverURL, authToken string, timeout time.Duration) (mcpSession, error) {
		return fake, nil
	}
	t.Cleanup(func() { newMCPSession = orig })
}

func TestConnectSucceedsAgainstFakeSession(t *testing.T) {
	fake := &fakeSession{}
	withFakeSession(t, fake)

	c := NewClient(Config{ServerURL: "https://aligner.example/mcp"})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	if !c.IsConnected() {
		t.Fatal("expected IsConnected to be true after a successful Connect")
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	fake := &fakeSession{}
	withFakeSession(t, fake)

	c := NewClient(Config{ServerURL: "https://aligner.example/mcp"})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("first Connect returned error: %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect returned error: %v", err)
	}
}

func TestConnectRequiresServerURL(t *testing.T) {
	c := NewClient(Config{})
	if err := c.Connect(context.Background()); err == nil {
		t.Fatal("expected Connect to fail with no server URL configured")
	}
}

func TestConnectWrapsStartError(t *testing.T) {
	fake := &fakeSession{startErr: errors.New("dial tcp: connection refused")}
	withFakeSession(t, fake)

	c := NewClient(Config{ServerURL: "https://aligner.example/mcp"})
	err := c.Connect(context.Background())
	if err == nil {
		t.Fatal("expected Connect to surface the session's Start error")
	}
	if c.IsConnected() {
		t.Error("expected IsConnected to stay false after a failed Start")
	}
}

func TestConnectClosesSessionOnInitializeError(t *testing.T) {
	fake := &fakeSession{initErr: errors.New("handshake rejected")}
	withFakeSession(t, fake)

	c := NewClient(Config{ServerURL: "https://aligner.example/mcp"})
	if err := c.Connect(context.Background()); err == nil {
		t.Fatal("expected Connect to surface the session's Initialize error")
	}
	if !fake.closeCalled {
		t.Error("expected Connect to close the session after a failed Initialize")
	}
}

func TestAlignSendsAudioBase64Key(t *testing.T) {
	fake := &fakeSession{
		callToolFunc: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return textResult(`{"words":[{"text":"hi","start":0,"end":0.4}]}`), nil
		},
	}
	withFakeSession(t, fake)

	c := NewClient(Config{ServerURL: "https://aligner.example/mcp"})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	words, err := c.Align(context.Background(), "YWJj", "en")
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if len(words) != 1 || words[0].Text != "hi" {
		t.Fatalf("unexpected words: %+v", words)
	}

	args := fake.lastToolCall.Params.Arguments.(map[string]interface{})
	if _, ok := args["audio_base64"]; !ok {
		t.Error("expected align_audio call to carry an audio_base64 argument")
	}
	if _, ok := args["audio"]; ok {
		t.Error("align_audio call should not carry a bare audio argument")
	}
	if got := args["language"]; got != "en" {
		t.Errorf("expected language argument \"en\", got %v", got)
	}
	if fake.lastToolCall.Params.Name != "align_audio" {
		t.Errorf("expected tool name align_audio, got %s", fake.lastToolCall.Params.Name)
	}
}

func TestAlignWithoutLanguageHintOmitsLanguageArg(t *testing.T) {
	fake := &fakeSession{}
	withFakeSession(t, fake)

	c := NewClient(Config{ServerURL: "https://aligner.example/mcp"})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, err := c.Align(context.Background(), "YWJj", ""); err != nil {
		t.Fatalf("Align returned error: %v", err)
	}

	args := fake.lastToolCall.Params.Arguments.(map[string]interface{})
	if _, ok := args["language"]; ok {
		t.Error("expected no language argument when languageHint is empty")
	}
}

func TestAlignFailsWhenNotConnected(t *testing.T) {
	c := NewClient(Config{ServerURL: "https://aligner.example/mcp"})
	if _, err := c.Align(context.Background(), "YWJj", ""); err == nil {
		t.Fatal("expected Align to fail before Connect is called")
	}
}

func TestAlignSurfacesToolError(t *testing.T) {
	fake := &fakeSession{
		callToolFunc: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return errorResult("decoding failed"), nil
		},
	}
	withFakeSession(t, fake)

	c := NewClient(Config{ServerURL: "https://aligner.example/mcp"})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, err := c.Align(context.Background(), "YWJj", ""); err == nil {
		t.Fatal("expected Align to surface the tool's error result")
	}
}

func TestAlignReturnsErrNoWordsOnEmptyResult(t *testing.T) {
	fake := &fakeSession{
		callToolFunc: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return textResult(`{"words":[]}`), nil
		},
	}
	withFakeSession(t, fake)

	c := NewClient(Config{ServerURL: "https://aligner.example/mcp"})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, err := c.Align(context.Background(), "YWJj", ""); err == nil {
		t.Fatal("expected Align to fail when the backend reports no words")
	}
}

func TestCloseDisconnectsAndClosesSession(t *testing.T) {
	fake := &fakeSession{}
	withFakeSession(t, fake)

	c := NewClient(Config{ServerURL: "https://aligner.example/mcp"})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !fake.closeCalled {
		t.Error("expected Close to close the underlying session")
	}
	if c.IsConnected() {
		t.Error("expected IsConnected to be false after Close")
	}
}
