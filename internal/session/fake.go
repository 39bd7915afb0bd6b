package session

import "context"

// FakeClient is a no-op WAClient double for tests: it records calls and
// lets the test drive events manually instead of talking to a real browser.
type FakeClient struct {
	LineID  string
	AuthDir string

	InitErr    error
	StateToRet State
	StateErr   error
	Phone      string
	PhoneErr   error

	initialized bool
	destroyed   bool
	handler     func(Event)
}

// NewFakeClient satisfies NewClientFunc.
func NewFakeClient(lineID, authDir string) WAClient {
	return &FakeClient{LineID: lineID, AuthDir: authDir, StateToRet: StateReady}
}

func (f *FakeClient) Initialize(ctx context.Context) error {
	f.initialized = true
	return f.InitErr
}

func (f *FakeClient) GetState(ctx context.Context) (State, error) {
	return f.StateToRet, f.StateErr
}

func (f *FakeClient) GetPhone(ctx context.Context) (string, error) {
	return f.Phone, f.PhoneErr
}

func (f *FakeClient) OnEvent(handler func(Event)) {
	f.handler = handler
}

func (f *FakeClient) Destroy(ctx context.Context) error {
	f.destroyed = true
	return nil
}

// Emit lets a test push an event through as if the underlying client fired it.
func (f *FakeClient) Emit(ev Event) {
	if f.handler != nil {
		f.handler(ev)
	}
}
