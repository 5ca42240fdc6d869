// Package ai is the admin assistant: a Gemini chat session whose tools read
// the shop's reports and may change a product's sale price.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-shop-manager/internal/logger"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// maxToolRounds bounds how many times the model may chain tool calls.
const maxToolRounds = 5

var ErrNotConfigured = errors.New("assistant api key is not configured")

type Agent struct {
	apiKey string
	model  string
	tools  *Tools
	now    func() time.Time
	log    *logrus.Entry
}

func NewAgent(apiKey, model string, tools *Tools) *Agent {
	if model == "" {
		model = "gemini-2.0-flash-001"
	}
	return &Agent{
		apiKey: apiKey,
		model:  model,
		tools:  tools,
		now:    time.Now,
		log:    logger.For("ai"),
	}
}

func (a *Agent) systemPrompt(userMessage string) string {
	today := a.now().Format("2006-01-02")
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the assistant of a small shop's back office.

	RULES:
	1. UPDATE: If a user asks to update a product by NAME (e.g. "Update Banana price"), you must NOT ask them for the ID. Instead:
	   - Call '%s' to find the ID.
	   - Call '%s' using that ID.

	2. READ: If a user asks for PRICE, COST, STOCK, or DETAILS of a product:
	   - You MUST call '%s' to get the full list.
	   - Then read the result to find the specific item and answer the user.

	3. SALES: If the user asks for sales/revenue over some days, use '%s'.

	4. PROFIT: If the user asks about a month's profit, expenses or income, use '%s'.

	USER: %s`, today, ToolCheckInventory, ToolUpdateProductPrice, ToolCheckInventory, ToolSalesReport, ToolMonthlySummary, userMessage)
}

// RunAgent answers one message, executing tool calls until the model replies
// with text.
func (a *Agent) RunAgent(ctx context.Context, userMessage string) (string, error) {
	if a.apiKey == "" {
		return "", ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.Tools = []*genai.Tool{{FunctionDeclarations: Declarations()}}

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(a.systemPrompt(userMessage)))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return printResponse(resp), nil
		}

		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, a.execute(ctx, call))
		}
		resp, err = session.SendMessage(ctx, parts...)
		if err != nil {
			return "", err
		}
	}

	return printResponse(resp), nil
}

func (a *Agent) execute(ctx context.Context, call genai.FunctionCall) genai.FunctionResponse {
	result, err := a.tools.Call(ctx, call.Name, call.Args)
	if err != nil {
		a.log.WithFields(logrus.Fields{"tool": call.Name, "args": call.Args}).WithError(err).Warn("tool call failed")
		result = map[string]any{"error": err.Error()}
	} else {
		a.log.WithField("tool", call.Name).Info("tool call")
	}
	return genai.FunctionResponse{Name: call.Name, Response: result}
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I completed the action."
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
