package emailsvc

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"

	"github.com/pogorelof/ai-exam/core"
)

// consoleService writes emails to stdout; the DEV/TEST sender.
type consoleService struct {
	subjPrefix string
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(appName string) core.EmailService {
	return &consoleService{subjPrefix: "[" + appName + "] "}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	var wg sync.WaitGroup
	for _, msg := range messages {
		msg := msg
		wg.Add(1)
		go func() {
			defer wg.Done()
			if msg.HasRecipients() && msg.HasContent() {
				svc.send(*msg)
			}
		}()
	}
	wg.Wait()
}

func (svc consoleService) send(msg core.EmailMessage) {
	var b strings.Builder
	b.WriteString("\n--------------------------------------------------------------------\n")
	fmt.Fprintf(&b, "To: %s\n", formatAddresses(msg.To))
	fmt.Fprintf(&b, "Subject: %s%s\n\n", svc.subjPrefix, msg.Subject)
	b.WriteString(msg.Body)
	b.WriteString("\n--------------------------------------------------------------------\n")
	log.Print(b.String())
}

func formatAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, a := range addrs {
		strs = append(strs, a.String())
	}
	return strings.Join(strs, ", ")
}
