package service

import (
	"math"

	"github.com/mmynk/mealsplit/internal/calculator"
	"github.com/mmynk/mealsplit/internal/models"
	"github.com/mmynk/mealsplit/internal/notify"
	"github.com/mmynk/mealsplit/pkg/api"
)

func billToModel(b api.Bill) models.Bill {
	items := make([]models.LineItem, len(b.Items))
	for i, item := range b.Items {
		items[i] = models.LineItem{
			ID:        item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Consumers: append([]string(nil), item.Consumers...),
		}
	}
	return models.Bill{
		Participants: append([]string(nil), b.Participants...),
		Items:        items,
	}
}

func billFromModel(b models.Bill) api.Bill {
	items := make([]api.LineItem, len(b.Items))
	for i, item := range b.Items {
		consumers := make([]string, len(item.Consumers))
		copy(consumers, item.Consumers)
		items[i] = api.LineItem{
			ID:        item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Consumers: consumers,
		}
	}
	participants := make([]string, len(b.Participants))
	copy(participants, b.Participants)
	return api.Bill{Participants: participants, Items: items}
}

func allocationToAPI(alloc calculator.Allocation) api.CalculateResponse {
	owed := make([]api.PersonShare, len(alloc.Owed))
	for i, share := range alloc.Owed {
		items := make([]api.ItemShare, len(share.Items))
		for j, item := range share.Items {
			items[j] = api.ItemShare{ItemID: item.ItemID, Name: item.Name, Amount: item.Amount}
		}
		owed[i] = api.PersonShare{
			Participant: share.Participant,
			Amount:      share.Amount,
			Display:     calculator.FormatAmount(share.Amount),
			Items:       items,
		}
	}
	unassigned := alloc.Unassigned()
	if math.Abs(unassigned) < 1e-9 {
		unassigned = 0
	}
	return api.CalculateResponse{
		Total:             alloc.Total,
		TotalDisplay:      calculator.FormatAmount(alloc.Total),
		Owed:              owed,
		Unassigned:        unassigned,
		UnassignedDisplay: calculator.FormatAmount(unassigned),
	}
}

func notificationToAPI(n *notify.Notification) *api.Notification {
	if n == nil {
		return nil
	}
	return &api.Notification{
		Title:       n.Title,
		Description: n.Description,
		Severity:    string(n.Severity),
	}
}
