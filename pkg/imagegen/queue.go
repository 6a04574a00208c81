package imagegen

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"crimson/pkg/utils"
)

// Queue serializes generation requests onto a single backend. One GPU, one
// job at a time; concurrent HTTP sessions wait their turn.
type Queue struct {
	client Client
	items  chan *item
	stop   chan struct{}
}

type item struct {
	ctx  context.Context
	req  *Request
	resp chan []byte
	err  chan error
}

func NewQueue(client Client) *Queue {
	return &Queue{
		client: client,
		items:  make(chan *item, 100),
		stop:   make(chan struct{}),
	}
}

func (q *Queue) Start() {
	go q.processLoop()
}

func (q *Queue) Stop() {
	close(q.stop)
}

// Generate enqueues the request and blocks until it is processed or ctx is
// cancelled. Queue itself satisfies Client.
func (q *Queue) Generate(ctx context.Context, req *Request) ([]byte, error) {
	it := &item{
		ctx:  ctx,
		req:  req,
		resp: make(chan []byte, 1),
		err:  make(chan error, 1),
	}

	select {
	case q.items <- it:
	default:
		return nil, errors.New("image queue is full")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-it.err:
		return nil, err
	case data := <-it.resp:
		return data, nil
	}
}

func (q *Queue) processLoop() {
	log.Info("image queue started")
	for {
		select {
		case <-q.stop:
			log.Info("image queue stopped")
			return
		case it := <-q.items:
			q.processItem(it)
		}
	}
}

func (q *Queue) processItem(it *item) {
	if it.ctx.Err() != nil {
		it.err <- it.ctx.Err()
		return
	}

	log.Debug("processing image generation", "prompt", utils.LimitStr(it.req.Prompt, 50))

	data, err := q.client.Generate(it.ctx, it.req)
	if err != nil {
		log.Error("image generation failed", "error", err)
		it.err <- err
		return
	}
	it.resp <- data
}
