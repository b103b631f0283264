package stock

import "github.com/shopspring/decimal"

// WeightedAverageCost implementa la lógica de costo promedio ponderado para entradas.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func WeightedAverageCost(onHand int64, currentCost decimal.Decimal, inQty int64, inCost decimal.Decimal) decimal.Decimal {
	current := decimal.NewFromInt(onHand)
	entry := decimal.NewFromInt(inQty)
	sum := current.Add(entry)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := current.Mul(currentCost).Add(entry.Mul(inCost))
	return num.Div(sum)
}
