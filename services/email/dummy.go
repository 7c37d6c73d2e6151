package emailsvc

import (
	"sync"

	"github.com/trezcool/darasa/core"
)

// dummyService records messages instead of sending them; for tests.
type dummyService struct {
	mutex    sync.Mutex
	messages []core.EmailMessage
}

var _ core.EmailService = (*dummyService)(nil)

func NewDummyService() *dummyService {
	return &dummyService{}
}

func (svc *dummyService) SendMessages(messages ...*core.EmailMessage) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	for _, msg := range messages {
		svc.messages = append(svc.messages, *msg)
	}
}

func (svc *dummyService) SentMessages() []core.EmailMessage {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	return append([]core.EmailMessage(nil), svc.messages...)
}
