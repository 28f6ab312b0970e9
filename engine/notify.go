/*
notify.go - Date-triggered notification rules

PURPOSE:
  Scans the client snapshot for events anchored on "today": birthdays,
  first-purchase anniversaries, and orders placed today. The presentation
  layer shows the result as the notification bell.

DETERMINISM:
  Recomputed from scratch on every call - no cache, since both the
  snapshot and "today" move. Identical inputs yield an identical,
  order-stable list: clients in snapshot order; within one client the
  birthday check, then the anniversary check, then its orders in entry
  order.
*/
package engine

import "fmt"

// =============================================================================
// NOTIFICATIONS
// =============================================================================

type NotificationType string

const (
	NotifyBirthday    NotificationType = "birthday"
	NotifyAnniversary NotificationType = "anniversary"
	NotifyOrder       NotificationType = "order"
)

// Notification is one derived event. Phone is carried on birthday
// entries so the bell can offer a direct greeting link.
type Notification struct {
	Type       NotificationType `json:"type"`
	Text       string           `json:"text"`
	ClientID   ClientID         `json:"clientId"`
	ClientName string           `json:"clientName"`
	Phone      string           `json:"phone,omitempty"`
}

// DeriveNotifications computes today's events for the snapshot.
//
// Rules:
//   - birthday:    client's birth month+day equals today's month+day
//   - anniversary: firstOrderDate plus exactly one year equals today
//   - order:       any order dated exactly today
func DeriveNotifications(clients []Client, today Date) []Notification {
	notes := []Notification{}
	for _, c := range clients {
		if !c.BirthDate.IsZero() && c.BirthDate.SameMonthDay(today) {
			notes = append(notes, Notification{
				Type:       NotifyBirthday,
				Text:       fmt.Sprintf("Birthday today: %s", c.Name),
				ClientID:   c.ID,
				ClientName: c.Name,
				Phone:      c.Phone,
			})
		}

		if c.FirstOrderDate != nil && c.FirstOrderDate.AddYears(1).Equal(today) {
			notes = append(notes, Notification{
				Type:       NotifyAnniversary,
				Text:       fmt.Sprintf("One year since %s's first order", c.Name),
				ClientID:   c.ID,
				ClientName: c.Name,
			})
		}

		for _, o := range c.Orders {
			if o.Date.Equal(today) {
				notes = append(notes, Notification{
					Type:       NotifyOrder,
					Text:       fmt.Sprintf("New order: %s for %s", orderDisplayName(o), c.Name),
					ClientID:   c.ID,
					ClientName: c.Name,
				})
			}
		}
	}
	return notes
}
