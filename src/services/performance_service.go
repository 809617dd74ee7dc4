package services

import (
	"context"
	"sort"

	"papertrading/src/models"

	"gonum.org/v1/gonum/stat"
)

type PerformanceServiceI interface {
	Calculate(ctx context.Context, userID string) (*models.Performance, error)
}

type PerformanceService struct {
	accounts     AccountServiceI
	transactions TransactionServiceI
}

func NewPerformanceService(accounts AccountServiceI, transactions TransactionServiceI) *PerformanceService {
	return &PerformanceService{accounts: accounts, transactions: transactions}
}

func (s *PerformanceService) Calculate(ctx context.Context, userID string) (*models.Performance, error) {
	account, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.transactions.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	performance := CalculatePerformance(account, history)
	return &performance, nil
}

type lot struct {
	price    float64
	quantity float64
}

// CalculatePerformance matches every sell against the oldest remaining buys of the
// same asset. Only the matched part of a sell is scored, sells with nothing to match
// are skipped and zero-profit sells count as neither win nor loss.
func CalculatePerformance(account *models.Account, history []models.Transaction) models.Performance {
	var perf models.Performance
	perf.TotalReturn = models.SubMoney(account.TotalValue, account.InitialBalance)
	perf.TotalReturnPercent = models.DivMoney(perf.TotalReturn, account.InitialBalance) * 100

	ordered := append([]models.Transaction(nil), history...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	// Queues hold every buy up front, so a sell can match a buy logged after it when
	// timestamps are out of order.
	queues := make(map[models.AssetKey][]lot)
	for _, tx := range ordered {
		if tx.Type == models.TransactionBuy {
			queues[tx.Asset] = append(queues[tx.Asset], lot{price: tx.Price, quantity: tx.Quantity})
		}
	}

	var wins, losses []float64
	for _, sell := range ordered {
		if sell.Type != models.TransactionSell {
			continue
		}
		queue := queues[sell.Asset]
		remaining := sell.Quantity
		var totalCost, sharesUsed float64
		for remaining > 0 && len(queue) > 0 {
			front := &queue[0]
			take := front.quantity
			if remaining < take {
				take = remaining
			}
			totalCost = models.AddMoney(totalCost, models.MulMoney(take, front.price))
			sharesUsed = models.AddMoney(sharesUsed, take)
			front.quantity = models.SubMoney(front.quantity, take)
			remaining = models.SubMoney(remaining, take)
			if front.quantity <= 0 {
				queue = queue[1:]
			}
		}
		queues[sell.Asset] = queue

		if sharesUsed <= 0 || totalCost <= 0 {
			continue
		}
		avgCost := models.DivMoney(totalCost, sharesUsed)
		quantity := sharesUsed
		if sell.Quantity < quantity {
			quantity = sell.Quantity
		}
		profit := models.MulMoney(models.SubMoney(sell.Price, avgCost), quantity)

		trade := &models.ClosedTrade{
			Asset:         sell.Asset,
			Name:          sell.Name,
			Quantity:      quantity,
			BuyPrice:      avgCost,
			SellPrice:     sell.Price,
			Profit:        profit,
			ProfitPercent: models.DivMoney(models.SubMoney(sell.Price, avgCost), avgCost) * 100,
			Timestamp:     sell.Timestamp,
		}
		switch {
		case profit > 0:
			wins = append(wins, profit)
			if perf.BestTrade == nil || profit > perf.BestTrade.Profit {
				perf.BestTrade = trade
			}
		case profit < 0:
			losses = append(losses, profit)
			if perf.WorstTrade == nil || profit < perf.WorstTrade.Profit {
				perf.WorstTrade = trade
			}
		default:
			continue
		}
		perf.TotalProfitLoss = models.AddMoney(perf.TotalProfitLoss, profit)
	}

	perf.WinningTrades = len(wins)
	perf.LosingTrades = len(losses)
	perf.TotalTrades = perf.WinningTrades + perf.LosingTrades
	if perf.TotalTrades > 0 {
		perf.WinRate = float64(perf.WinningTrades) / float64(perf.TotalTrades) * 100
	}
	if len(wins) > 0 {
		perf.AverageWin = stat.Mean(wins, nil)
	}
	if len(losses) > 0 {
		perf.AverageLoss = stat.Mean(losses, nil)
	}
	return perf
}
