package event

import "fmt"

// Subscriber groups several listeners in one type.
//
//	type UserEvents struct{}
//
//	func (UserEvents) Subscribes() map[string][]any {
//	    return map[string][]any{
//	        "user.login":  {onLogin},
//	        "user.logout": {onLogout, "audit.listener"},
//	    }
//	}
type Subscriber interface {
	Subscribes() map[string][]any
}

// Subscribe registers every listener returned by s. Registration stops at
// the first invalid listener; listeners registered before it are kept.
func (d *Dispatcher) Subscribe(s Subscriber) error {
	for event, listeners := range s.Subscribes() {
		for _, l := range listeners {
			if err := d.Listen(event, l); err != nil {
				return fmt.Errorf("event: subscribe %T to %q: %w", s, event, err)
			}
		}
	}
	return nil
}
