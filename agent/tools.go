package agent

import (
	"context"
	"fmt"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/market"
	"google.golang.org/genai"
)

func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name: "Facilitator",
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{FunctionDeclarations: NewDeclaration(experts)}},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You lead the conversation with a retail trader and answer their requests.

			The experts available as tools are dedicated to you and remember your previous questions.
			Plan which expert to ask, combine their answers and reply in concise markdown.

			Never present a trade as certain. When sizing or planning a trade, always state the stop
			and the amount at risk.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader is an expert grounded on Google Search for news and context.
func NewTrader() *Expert {
	return &Expert{
		Name: "Trader",
		Description: `An experienced trader aware of markets, companies and funds and of their latest
		news. Ask the Trader whenever you need recent or grounded information.`,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert trader. Use Google Search to ground your assertions and relate
			the latest news to the question.
			`}}},
		},
	}
}

// NewAnalyst is an expert computing figures with the tradedesk calculators.
func NewAnalyst(quotes market.Provider) *Expert {
	lib := []Function{QuoteTool(quotes), SizePositionTool, PaycheckWhatIfTool}
	return &Expert{
		Name: "Analyst",
		Description: `The Analyst computes exact figures: live quotes, position sizes from a risk
		budget and the take-home pay effect of retirement or benefit contributions.`,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{FunctionDeclarations: NewDeclaration(lib)}},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a quantitative analyst. Never estimate a figure a tool can compute,
			call the tool and report its result with the inputs you used.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// QuoteTool returns the live quote of a symbol.
func QuoteTool(quotes market.Provider) *Func {
	const name = "get_quote"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Returns the latest price, daily change and range of a stock ticker.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"symbol": {Type: genai.TypeString, Description: "Ticker, 1 to 10 letters, e.g. AAPL."},
				},
				Required: []string{"symbol"},
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			s, _ := args["symbol"].(string)
			symbol, err := tradedesk.NormalizeTicker(s)
			if err != nil {
				return failure(id, name, "%v", err)
			}
			q, err := quotes.Quote(ctx, symbol)
			if err != nil {
				return failure(id, name, "no quote for %s: %v", symbol, err)
			}
			return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{
				"symbol":         q.Symbol,
				"price":          q.Price,
				"change":         q.Change,
				"change_percent": q.ChangePercent,
				"high":           q.High,
				"low":            q.Low,
				"previous_close": q.PreviousClose,
			}}
		},
	}
}

// SizePositionTool sizes a position from a risk budget.
var SizePositionTool = &Func{
	Decl: &genai.FunctionDeclaration{
		Name:        "size_position",
		Description: "Computes the number of shares to buy so that a loss at the stop stays within the risk budget.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"account_size":         {Type: genai.TypeNumber, Description: "Account size in dollars."},
				"risk_percent":         {Type: genai.TypeNumber, Description: "Percent of the account risked on the trade, e.g. 1."},
				"entry":                {Type: genai.TypeNumber, Description: "Entry price."},
				"stop":                 {Type: genai.TypeNumber, Description: "Stop loss price."},
				"max_position_percent": {Type: genai.TypeNumber, Description: "Optional cap of the position value, percent of the account."},
			},
			Required: []string{"account_size", "risk_percent", "entry", "stop"},
		},
	},
	Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
		const name = "size_position"
		nums, err := numbers(args, "account_size", "risk_percent", "entry", "stop")
		if err != nil {
			return failure(id, name, "%v", err)
		}
		s := tradedesk.RiskSettings{AccountSize: nums[0], MaxRiskPerTrade: tradedesk.Percent(nums[1]), MaxPositionSize: 100}
		if v, ok := args["max_position_percent"].(float64); ok && v > 0 {
			s.MaxPositionSize = tradedesk.Percent(v)
		}
		p, err := tradedesk.SizePosition(s, nums[2], nums[3])
		if err != nil {
			return failure(id, name, "%v", err)
		}
		return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{
			"shares":          p.Shares,
			"position_value":  p.PositionValue,
			"risk_per_share":  p.RiskPerShare,
			"risk_amount":     p.RiskAmount,
			"risk_budget":     p.RiskBudget,
			"capped_by_limit": p.CappedByLimit,
		}}
	},
}

// PaycheckWhatIfTool projects the take-home effect of a contribution change.
var PaycheckWhatIfTool = &Func{
	Decl: &genai.FunctionDeclaration{
		Name: "paycheck_whatif",
		Description: `Projects how contributing a percent of gross pay to a deduction changes the net
		paycheck, accounting for the federal and state marginal tax savings of pre-tax deductions.`,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"gross_pay":          {Type: genai.TypeNumber, Description: "Gross pay per period."},
				"frequency":          {Type: genai.TypeString, Enum: []string{"weekly", "biweekly", "semimonthly", "monthly"}},
				"state":              {Type: genai.TypeString, Description: "Two letter US state code."},
				"variable":           {Type: genai.TypeString, Enum: variableIDs()},
				"adjustment_percent": {Type: genai.TypeNumber, Description: "Percent of gross pay contributed."},
			},
			Required: []string{"gross_pay", "frequency", "state", "variable", "adjustment_percent"},
		},
	},
	Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
		const name = "paycheck_whatif"
		nums, err := numbers(args, "gross_pay", "adjustment_percent")
		if err != nil {
			return failure(id, name, "%v", err)
		}
		f, _ := args["frequency"].(string)
		freq, err := tradedesk.ParsePayFrequency(f)
		if err != nil {
			return failure(id, name, "%v", err)
		}
		vid, _ := args["variable"].(string)
		v, err := tradedesk.LookupVariable(vid)
		if err != nil {
			return failure(id, name, "%v", err)
		}
		state, _ := args["state"].(string)
		gross := tradedesk.USD(nums[0])
		res, err := tradedesk.CalculatePaycheck(tradedesk.PaycheckInput{GrossPay: gross, Frequency: freq, State: state})
		if err != nil {
			return failure(id, name, "%v", err)
		}
		w, err := tradedesk.ProjectWhatIf(res, gross, freq, nums[1], v, tradedesk.EmployerMatch{})
		if err != nil {
			return failure(id, name, "%v", err)
		}
		return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{
			"current_net_pay":       res.NetPay.String(),
			"adjustment_amount":     w.AdjustmentAmount.String(),
			"federal_marginal_rate": w.FederalMarginalRate,
			"state_marginal_rate":   w.StateMarginalRate,
			"tax_savings":           w.TaxSavings.String(),
			"net_cost":              w.NetCost.String(),
			"new_net_pay":           w.NewNetPay.String(),
			"annual_net_cost":       w.AnnualNetCost.String(),
		}}
	},
}

func variableIDs() []string {
	ids := make([]string, len(tradedesk.Variables))
	for i, v := range tradedesk.Variables {
		ids[i] = v.ID
	}
	return ids
}

// numbers reads the named numeric arguments.
func numbers(args map[string]any, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, n := range names {
		switch v := args[n].(type) {
		case float64:
			out[i] = v
		case int:
			out[i] = float64(v)
		default:
			return nil, fmt.Errorf("argument %q must be a number, got %T", n, args[n])
		}
	}
	return out, nil
}
