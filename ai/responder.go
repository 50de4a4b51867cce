//go:generate go run go.uber.org/mock/mockgen -source=responder.go -destination=../mocks/mock_responder.go -package=mocks
package ai

import "fmt"

// Responder turns a predicted intent into the reply text sent back to the
// user. It is a deliberate seam: the template below is a placeholder policy
// that a real response generator can replace without touching the gateway's
// credit or persistence logic.
type Responder interface {
	Reply(intent string) string
}

type TemplateResponder struct{}

func NewTemplateResponder() TemplateResponder {
	return TemplateResponder{}
}

func (TemplateResponder) Reply(intent string) string {
	return fmt.Sprintf("Predicted intent: %s", intent)
}
