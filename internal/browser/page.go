package browser

import (
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// LoadState is the navigation event Goto waits for.
type LoadState string

const LoadStateDOMContentLoaded LoadState = "domcontentloaded"

// ResponseHandler receives the URL of a network response and a function
// that reads its body.
type ResponseHandler func(url string, body func() ([]byte, error))

// Page is the subset of a browser tab the renderer and library session drive.
type Page interface {
	Goto(url string, state LoadState, timeout time.Duration) error
	WaitForSelector(selector string, timeout time.Duration) error
	Evaluate(expression string) (any, error)
	Content() (string, error)
	OnResponse(handler ResponseHandler)
	Close() error
}

// playwrightPage adapts a playwright page to Page.
type playwrightPage struct {
	page pw.Page

	// owned is closed together with the page when set (non-persistent
	// contexts create one context per page).
	owned pw.BrowserContext

	mu     sync.Mutex
	queues []*responseQueue
}

func (p *playwrightPage) Goto(url string, state LoadState, timeout time.Duration) error {
	waitUntil := pw.WaitUntilState(state)
	_, err := p.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: &waitUntil,
		Timeout:   pw.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (p *playwrightPage) WaitForSelector(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().WaitFor(pw.LocatorWaitForOptions{
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) Evaluate(expression string) (any, error) {
	return p.page.Evaluate(expression)
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

// OnResponse registers handler for every response. Reading a body from
// inside the playwright event callback would block the connection that
// delivers it, so responses are queued and handled on one worker goroutine
// in the order they arrived.
func (p *playwrightPage) OnResponse(handler ResponseHandler) {
	q := newResponseQueue(handler)
	p.mu.Lock()
	p.queues = append(p.queues, q)
	p.mu.Unlock()

	p.page.OnResponse(func(resp pw.Response) {
		q.push(resp.URL(), resp.Body)
	})
}

func (p *playwrightPage) Close() error {
	p.mu.Lock()
	queues := p.queues
	p.queues = nil
	p.mu.Unlock()
	for _, q := range queues {
		q.close()
	}

	err := p.page.Close()
	if p.owned != nil {
		if cerr := p.owned.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type queuedResponse struct {
	url  string
	body func() ([]byte, error)
}

// responseQueue hands responses to a handler one at a time, in push order.
// push never blocks.
type responseQueue struct {
	handler ResponseHandler

	mu     sync.Mutex
	items  []queuedResponse
	closed bool

	wake chan struct{}
	done chan struct{}
}

func newResponseQueue(handler ResponseHandler) *responseQueue {
	q := &responseQueue{
		handler: handler,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *responseQueue) push(url string, body func() ([]byte, error)) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, queuedResponse{url: url, body: body})
	q.mu.Unlock()
	q.signal()
}

func (q *responseQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *responseQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.wake
			continue
		}
		item := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		q.handler(item.url, item.body)
	}
}

// close stops accepting responses and waits until the queued ones are handled.
func (q *responseQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
	<-q.done
}
