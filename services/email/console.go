package emailsvc

import (
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/trezcool/darasa/core"
)

// consoleService logs messages to stdout instead of sending them; for dev.
type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if !(msg.HasRecipients() && msg.HasContent()) {
		return
	}

	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, addr.String())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", svc.defaultFromEmail.String())
	fmt.Fprintf(&b, "To: %s\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\n\n", svc.subjPrefix+msg.Subject)
	b.WriteString(msg.BodyStr)
	log.Println(b.String())
}
