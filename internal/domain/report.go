package domain

// Report is the full analysis snapshot of one dataset.
type Report struct {
	Overview       Overview              `json:"overview"`
	ByArticle      []ArticleSummary      `json:"byArticle"`
	ByMovementType []MovementTypeSummary `json:"byMovementType"`
	ByUser         []UserSummary         `json:"byUser"`
	ByDate         []DateSummary         `json:"byDate"`
	WriteOffs      WriteOffSummary       `json:"writeOffs"`
	Gains          GainSummary           `json:"gains"`
	Financial      FinancialSummary      `json:"financial"`
}

type Overview struct {
	TotalRecords   int     `json:"totalRecords"`
	TotalQuantity  float64 `json:"totalQuantity"`
	TotalLocal     float64 `json:"totalBetragHaus"`
	TotalCost      float64 `json:"totalBetragEKP"`
	TotalSale      float64 `json:"totalVKWert"`
	UniqueArticles int     `json:"uniqueArticles"`
	UniqueUsers    int     `json:"uniqueUsers"`
	Profit         float64 `json:"profit"`
}

type ArticleSummary struct {
	Item            string  `json:"artikel"`
	ItemText        string  `json:"artikeltext"`
	TotalQuantity   float64 `json:"totalQuantity"`
	TotalLocal      float64 `json:"totalBetragHaus"`
	TotalCost       float64 `json:"totalBetragEKP"`
	TotalSale       float64 `json:"totalVKWert"`
	Movements       int     `json:"movements"`
	WriteOffs       float64 `json:"writeOffs"`
	Gains           float64 `json:"gains"`
	AvgValuePerUnit float64 `json:"avgValuePerUnit"`
}

type MovementTypeSummary struct {
	MovementType  string  `json:"bewegungsart"`
	Count         int     `json:"count"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalLocal    float64 `json:"totalBetragHaus"`
	TotalCost     float64 `json:"totalBetragEKP"`
	TotalSale     float64 `json:"totalVKWert"`
	Profit        float64 `json:"profit"`
}

type UserSummary struct {
	User           string  `json:"benutzer"`
	Movements      int     `json:"movements"`
	TotalQuantity  float64 `json:"totalQuantity"`
	TotalLocal     float64 `json:"totalBetragHaus"`
	UniqueArticles int     `json:"uniqueArticles"`
}

type DateSummary struct {
	Date          string  `json:"datum"`
	Movements     int     `json:"movements"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalLocal    float64 `json:"totalBetragHaus"`
}

type WriteOffSummary struct {
	Count         int              `json:"count"`
	TotalQuantity float64          `json:"totalQuantity"`
	TotalLocal    float64          `json:"totalBetragHaus"`
	TotalCost     float64          `json:"totalBetragEKP"`
	TotalSale     float64          `json:"totalVKWert"`
	PotentialLoss float64          `json:"potentialLoss"`
	TopArticles   []ArticleNetLoss `json:"topArticles"`
}

// ArticleNetLoss is an article whose movements net to a write-off. Values are
// reported as magnitudes.
type ArticleNetLoss struct {
	Item     string  `json:"artikel"`
	ItemText string  `json:"artikeltext"`
	Quantity float64 `json:"quantity"`
	Local    float64 `json:"betragHaus"`
	Sale     float64 `json:"vkWert"`
}

type GainSummary struct {
	Count         int     `json:"count"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalLocal    float64 `json:"totalBetragHaus"`
	TotalCost     float64 `json:"totalBetragEKP"`
	TotalSale     float64 `json:"totalVKWert"`
	PotentialGain float64 `json:"potentialGain"`
}

type FinancialSummary struct {
	TotalRevenue float64 `json:"totalRevenue"`
	TotalCost    float64 `json:"totalCost"`
	TotalProfit  float64 `json:"totalProfit"`
	WriteOffLoss float64 `json:"writeOffLoss"`
	GainValue    float64 `json:"gainValue"`
	NetImpact    float64 `json:"netImpact"`
	ProfitMargin float64 `json:"profitMargin"`
}

// ArticleDetail is the drill-down view of one article. Amounts are raw,
// not sign-normalized.
type ArticleDetail struct {
	Item            string            `json:"artikel"`
	ItemText        string            `json:"artikeltext"`
	TotalBooked     float64           `json:"totalBooked"`
	TotalWrittenOff float64           `json:"totalWrittenOff"`
	TotalGained     float64           `json:"totalGained"`
	TotalValue      float64           `json:"totalValue"`
	MovementCount   int               `json:"movementCount"`
	Movements       []ArticleMovement `json:"movements"`
}

type ArticleMovement struct {
	Date         string  `json:"datum"`
	MovementType string  `json:"bewegungsart"`
	Quantity     float64 `json:"menge"`
	Local        float64 `json:"betragHaus"`
	Cost         float64 `json:"betragEKP"`
	Sale         float64 `json:"vkWert"`
	Time         string  `json:"uhrzeit,omitempty"`
	Document     string  `json:"beleg,omitempty"`
}
