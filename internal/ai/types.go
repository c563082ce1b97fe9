package ai

// chatMessage is a single role/content message, shared by the Anthropic
// and OpenAI request formats.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiErrorBody is the error object backends embed in stream events.
// Anthropic and OpenAI set Type, Gemini sets Status.
type apiErrorBody struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e *apiErrorBody) kind() string {
	if e.Type != "" {
		return e.Type
	}
	return e.Status
}

// anthropicRequest is the request body sent to the Messages API.
type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
}

// anthropicEvent is one streamed Messages API event. The Type tag selects
// which of the remaining fields are populated.
type anthropicEvent struct {
	Type  string          `json:"type"`
	Index int             `json:"index"`
	Delta *anthropicDelta `json:"delta,omitempty"`
	Error *apiErrorBody   `json:"error,omitempty"`
}

// anthropicDelta is the delta of a content_block_delta event. Only
// text_delta carries user-visible text; input_json_delta and
// thinking_delta are ignored.
type anthropicDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// openaiRequest is the request body sent to the Chat Completions API.
type openaiRequest struct {
	Model               string        `json:"model"`
	MaxTokens           int           `json:"max_tokens,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Messages            []chatMessage `json:"messages"`
	Stream              bool          `json:"stream"`
}

// openaiChunk is one streamed chat.completion.chunk object.
// Choices is a pointer so a missing array can be told apart from an
// empty one (usage-only chunks send "choices": []).
type openaiChunk struct {
	Choices *[]openaiChoice `json:"choices"`
	Error   *apiErrorBody   `json:"error,omitempty"`
}

type openaiChoice struct {
	Index        int         `json:"index"`
	Delta        openaiDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"`
}

type openaiDelta struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content"`
}

// geminiRequest is the request body sent to streamGenerateContent.
type geminiRequest struct {
	SystemInstruction geminiContent   `json:"system_instruction"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiChunk is one streamed GenerateContentResponse.
type geminiChunk struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *apiErrorBody     `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      *geminiContent `json:"content"`
	FinishReason string         `json:"finishReason,omitempty"`
}
