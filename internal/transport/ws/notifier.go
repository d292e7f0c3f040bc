package ws

import (
	"github.com/deeecaaa/cardmarket/internal/domain"
)

// HubNotifier implements service.MarketNotifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyCardCreated(card *domain.Card) {
	n.emit(EventTypeCardCreated, card)
}

func (n *HubNotifier) NotifyCardListed(card *domain.Card) {
	n.emit(EventTypeCardListed, card)
}

func (n *HubNotifier) NotifyCardDelisted(card *domain.Card) {
	n.emit(EventTypeCardDelisted, card)
}

func (n *HubNotifier) NotifyCardSold(card *domain.Card) {
	n.emit(EventTypeCardSold, card)
}

func (n *HubNotifier) NotifyPriceChanged(card *domain.Card) {
	n.emit(EventTypeCardPrice, card)
}

func (n *HubNotifier) emit(eventType string, card *domain.Card) {
	evt, err := NewEvent(eventType, CardPayload{Card: *card})
	if err != nil {
		n.hub.logger.Errorw("ws notifier: marshal error", "err", err)
		return
	}
	n.hub.Broadcast(evt)
}
