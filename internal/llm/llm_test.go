package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/testsmith/internal/config"
)

// fakeHTTP returns a canned HTTP response and records the request.
type fakeHTTP struct {
	status int
	body   string
	req    *http.Request
	reqBody []byte
}

func (f *fakeHTTP) Do(req *http.Request) (*http.Response, error) {
	f.req = req
	if req.Body != nil {
		f.reqBody, _ = io.ReadAll(req.Body)
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewBufferString(f.body)),
	}, nil
}

func geminiOK(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + mustJSON(text) + `}]},"finishReason":"STOP"}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestGeminiGenerate(t *testing.T) {
	httpClient := &fakeHTTP{status: 200, body: geminiOK("class OrderServiceImplTest {}")}
	g := NewGeminiWithClient("key", "gemini-2.5-pro", "", httpClient)

	out, err := g.Generate(context.Background(), "system text", []Message{
		{Role: RoleUser, Content: "generate the test"},
	})
	require.NoError(t, err)
	assert.Equal(t, "class OrderServiceImplTest {}", out)

	assert.Contains(t, httpClient.req.URL.String(), "gemini-2.5-pro:generateContent")
	assert.Contains(t, httpClient.req.URL.String(), "key=key")

	var req geminiRequest
	require.NoError(t, json.Unmarshal(httpClient.reqBody, &req))
	require.NotNil(t, req.SystemInstruction)
	assert.Equal(t, "system text", req.SystemInstruction.Parts[0].Text)
	require.Len(t, req.Contents, 1)
	assert.Equal(t, "user", req.Contents[0].Role)
}

func TestGeminiMapsAssistantRole(t *testing.T) {
	httpClient := &fakeHTTP{status: 200, body: geminiOK("ok")}
	g := NewGeminiWithClient("key", "m", "", httpClient)

	_, err := g.Generate(context.Background(), "", []Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
		{Role: RoleUser, Content: "c"},
	})
	require.NoError(t, err)

	var req geminiRequest
	require.NoError(t, json.Unmarshal(httpClient.reqBody, &req))
	require.Len(t, req.Contents, 3)
	assert.Equal(t, "model", req.Contents[1].Role)
}

func TestGeminiAPIError(t *testing.T) {
	g := NewGeminiWithClient("key", "m", "", &fakeHTTP{status: 429, body: "quota exceeded"})

	_, err := g.Generate(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGeminiEmptyResponse(t *testing.T) {
	g := NewGeminiWithClient("key", "m", "", &fakeHTTP{status: 200, body: `{"candidates":[]}`})

	_, err := g.Generate(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiMissingKey(t *testing.T) {
	g := NewGeminiWithClient("", "m", "", &fakeHTTP{status: 200, body: geminiOK("x")})

	_, err := g.Generate(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

// fakeCompleter scripts the OpenAI SDK surface.
type fakeCompleter struct {
	resp openai.ChatCompletionResponse
	err  error
	req  openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, f.err
}

func TestOpenAIGenerate(t *testing.T) {
	completer := &fakeCompleter{
		resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "class T {}"}},
			},
		},
	}
	o := &OpenAI{client: completer, model: "gpt-4o-mini"}

	out, err := o.Generate(context.Background(), "sys", []Message{{Role: RoleUser, Content: "go"}})
	require.NoError(t, err)
	assert.Equal(t, "class T {}", out)

	require.Len(t, completer.req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, completer.req.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, completer.req.Messages[1].Role)
	assert.Equal(t, "gpt-4o-mini", completer.req.Model)
}

func TestOpenAINoChoices(t *testing.T) {
	o := &OpenAI{client: &fakeCompleter{}, model: "m"}

	_, err := o.Generate(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIError(t *testing.T) {
	o := &OpenAI{client: &fakeCompleter{err: errors.New("boom")}, model: "m"}

	_, err := o.Generate(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI("", "m", "")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestConversationKeepsHistory(t *testing.T) {
	fake := &Fake{Responses: []string{"first", "second"}}
	conv := NewConversation(fake, "sys")

	out, err := conv.Send(context.Background(), "one")
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	out, err = conv.Send(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, "second", out)

	// Second call carries the full exchange so far.
	require.Len(t, fake.Calls, 2)
	second := fake.Calls[1]
	assert.Equal(t, "sys", second.System)
	require.Len(t, second.Messages, 3)
	assert.Equal(t, "one", second.Messages[0].Content)
	assert.Equal(t, "first", second.Messages[1].Content)
	assert.Equal(t, RoleAssistant, second.Messages[1].Role)
	assert.Equal(t, "two", second.Messages[2].Content)
}

func TestConversationErrorLeavesHistory(t *testing.T) {
	fake := &Fake{Err: errors.New("down")}
	conv := NewConversation(fake, "")

	_, err := conv.Send(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 0, conv.Len())
}

func TestConversationReset(t *testing.T) {
	fake := &Fake{Responses: []string{"r"}}
	conv := NewConversation(fake, "")

	_, err := conv.Send(context.Background(), "x")
	require.NoError(t, err)
	require.NotZero(t, conv.Len())

	conv.Reset()
	assert.Equal(t, 0, conv.Len())
}

func TestNewFromEnv(t *testing.T) {
	client, err := NewFromEnv(&config.TestsmithEnv{Provider: "gemini", GeminiKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", client.ID())

	client, err = NewFromEnv(&config.TestsmithEnv{Provider: "openai", OpenAIKey: "k", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "openai", client.ID())

	_, err = NewFromEnv(&config.TestsmithEnv{Provider: "gemini"})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewFromEnv(&config.TestsmithEnv{Provider: "watson"})
	assert.Error(t, err)
}
