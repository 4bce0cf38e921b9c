package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lokallens/lokallens/pkg/llm"
	"github.com/lokallens/lokallens/pkg/utils"
)

var (
	askToolName    = "ask_lokallens"
	askDescription = "Ask the Lokallens assistant about Indonesian culture (batik, wayang, cuisine, music, traditions). Pass either a single question or the full conversation as messages. Answers are in Indonesian."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string                 `json:"question,omitempty" jsonschema:"a single question; ignored when messages is set"`
	Messages []llm.ConversationTurn `json:"messages,omitempty" jsonschema:"the conversation so far, oldest first; role is user or assistant"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// handleAsk forwards the conversation to the completer.
func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	req := toProxyRequest(input)
	if len(req.Messages) == 0 {
		return errorResult("question or messages is required"), AskOutput{}, nil
	}

	logger.Debug("MCP ask request",
		"turns", len(req.Messages),
		"preview", utils.Truncate(req.Messages[len(req.Messages)-1].Content, 60),
	)

	resp, err := s.config.Completer.Complete(ctx, req)
	if err != nil {
		logger.Error("MCP ask failed",
			"kind", llm.KindOf(err).String(),
			"error", err,
		)
		if llm.KindOf(err) == llm.ConfigurationError {
			return errorResult(llm.MsgMissingAPIKey), AskOutput{}, nil
		}
		return errorResult(fmt.Sprintf("%s %s", llm.MsgGenericError, llm.Detail(err))), AskOutput{}, nil
	}

	answer := resp.Text()
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: answer},
		},
	}, AskOutput{Answer: answer}, nil
}

func toProxyRequest(input AskInput) *llm.ProxyRequest {
	if len(input.Messages) > 0 {
		return &llm.ProxyRequest{Messages: input.Messages}
	}
	if input.Question == "" {
		return &llm.ProxyRequest{}
	}
	return &llm.ProxyRequest{Messages: []llm.ConversationTurn{llm.NewUserTurn(input.Question)}}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
