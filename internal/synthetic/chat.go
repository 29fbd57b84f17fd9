package synthetic

import "strings"

var faq = []struct {
	keyword  string
	response string
}{
	{"what is a stock", "A stock represents ownership in a company. When you buy a stock, you're purchasing a small piece of that company, which makes you a shareholder."},
	{"what is investing", "Investing is allocating money with the expectation of generating income or profit over time. Common investments include stocks, bonds, mutual funds, and real estate."},
	{"how do i start investing", "To start investing, first establish an emergency fund, set clear goals, open a brokerage account, learn basic investment concepts, start with diversified investments like index funds, and consider dollar-cost averaging."},
	{"what is a bear market", "A bear market is when a market experiences prolonged price declines, typically a drop of 20% or more from recent highs. It's often accompanied by negative investor sentiment."},
	{"what is a bull market", "A bull market refers to a financial market condition where prices are rising or expected to rise. It's characterized by optimism, investor confidence, and strong economic indicators."},
	{"what is diversification", "Diversification is spreading investments across various assets to reduce risk. By not putting all your eggs in one basket, you can limit losses during market downturns."},
	{"what is the s&p 500", "The S&P 500 is a stock market index that tracks the performance of 500 large companies listed on U.S. stock exchanges. It's widely regarded as a gauge of the overall U.S. stock market."},
	{"what is a dividend", "A dividend is a payment made by a corporation to its shareholders as a distribution of profits. Companies that pay dividends typically do so quarterly."},
}

// OfflineReply is returned when no FAQ entry matches
const OfflineReply = "I'm currently operating in offline mode with limited capabilities. " +
	"When online, I can provide detailed financial analysis and personalized responses to your questions. " +
	"For now, I can answer basic financial questions - try asking about stocks, investing basics, or market terminology."

// ChatReply answers message from a small FAQ, or with the offline notice
func (g *Generator) ChatReply(message string) string {
	lower := strings.ToLower(message)
	for _, entry := range faq {
		if strings.Contains(lower, entry.keyword) {
			return entry.response
		}
	}
	return OfflineReply
}
