package relay

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	progress []struct {
		slide    int
		progress float64
	}
	scrolls []float64
	docks   []bool
	layouts [][]model.Panel
	hashes  []string
	slides  []int
	embeds  []bool
}

func (r *recordingSink) OnProgress(_ context.Context, slide int, progress float64) {
	r.progress = append(r.progress, struct {
		slide    int
		progress float64
	}{slide, progress})
}
func (r *recordingSink) OnScroll(_ context.Context, y float64) { r.scrolls = append(r.scrolls, y) }

func (r *recordingSink) OnDock(_ context.Context, docked bool) { r.docks = append(r.docks, docked) }

func (r *recordingSink) OnLayout(_ context.Context, panels []model.Panel) {
	r.layouts = append(r.layouts, panels)
}

func (r *recordingSink) OnHash(_ context.Context, fragment string) {
	r.hashes = append(r.hashes, fragment)
}

func (r *recordingSink) OnSlide(_ context.Context, slide int) { r.slides = append(r.slides, slide) }

func (r *recordingSink) OnEmbed(_ context.Context, embedded bool) {
	r.embeds = append(r.embeds, embedded)
}

func routeRaw(h *Hub, raw string) {
	c := &Client{ID: "test", Role: RoleNarrative}
	h.route(context.Background(), c, []byte(raw))
}

func TestRoute(t *testing.T) {
	sink := &recordingSink{}
	h := NewHub(sink, Options{})

	routeRaw(h, `{"source":"storymap-controller","payload":{"type":"progress","slide":2,"progress":0.4}}`)
	routeRaw(h, `{"source":"storymap-controller","payload":{"type":"scroll","scrollY":812.5}}`)
	routeRaw(h, `{"source":"storymap-controller","payload":{"type":"dock","docked":true}}`)
	routeRaw(h, `{"source":"storymap-controller","payload":{"type":"layout","panels":[{"height":900,"marginTop":10,"marginBottom":20}]}}`)
	routeRaw(h, `{"source":"storymap-controller","payload":{"type":"hash","hash":"#3"}}`)
	routeRaw(h, `{"source":"storymap-controller","payload":{"type":"src","src":"https://maps.example.com/embed#5"}}`)
	routeRaw(h, `{"source":"storymap-controller","payload":{"type":"slide","slide":7}}`)
	routeRaw(h, `{"source":"storymap-controller","payload":{"isEmbedded":true}}`)

	require.Len(t, sink.progress, 1)
	assert.Equal(t, 2, sink.progress[0].slide)
	assert.Equal(t, 0.4, sink.progress[0].progress)
	assert.Equal(t, []float64{812.5}, sink.scrolls)
	assert.Equal(t, []bool{true}, sink.docks)
	require.Len(t, sink.layouts, 1)
	assert.Equal(t, 900.0, sink.layouts[0][0].Height)
	assert.Equal(t, []string{"#3"}, sink.hashes)
	assert.Equal(t, []int{5, 7}, sink.slides)
	assert.Equal(t, []bool{true}, sink.embeds)
}

func TestRoute_IgnoresForeignAndMalformed(t *testing.T) {
	sink := &recordingSink{}
	h := NewHub(sink, Options{})

	routeRaw(h, `{"source":"someone-else","payload":{"type":"progress","slide":1,"progress":0.5}}`)
	routeRaw(h, `not json at all`)
	routeRaw(h, `{"source":"storymap-controller","payload":{"type":"progress"}}`)
	routeRaw(h, `{"source":"storymap-controller","payload":{"type":"somethingNew"}}`)

	assert.Empty(t, sink.progress)
	assert.Empty(t, sink.scrolls)
	assert.Empty(t, sink.embeds)
}

func TestSendToEmbeds_EnvelopeShape(t *testing.T) {
	sink := &recordingSink{}
	h := NewHub(sink, Options{SendBuffer: 4})

	embed := &Client{ID: "e", Role: RoleEmbed, send: make(chan []byte, 4)}
	narrative := &Client{ID: "n", Role: RoleNarrative, send: make(chan []byte, 4)}
	h.clients[embed] = true
	h.clients[narrative] = true

	type directive struct {
		Action string `json:"action"`
	}
	require.NoError(t, h.SendToEmbeds(directive{Action: "map.goTo"}))

	select {
	case data := <-embed.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, Source, env.Source)
		assert.Equal(t, TypeDirective, env.Payload.Type)
	default:
		t.Fatal("embed client received nothing")
	}

	select {
	case <-narrative.send:
		t.Fatal("narrative client must not receive directives")
	default:
	}
}

func TestClientCount(t *testing.T) {
	h := NewHub(&recordingSink{}, Options{})
	h.clients[&Client{Role: RoleEmbed, send: make(chan []byte, 1)}] = true
	h.clients[&Client{Role: RoleNarrative, send: make(chan []byte, 1)}] = true
	h.clients[&Client{Role: RoleNarrative, send: make(chan []byte, 1)}] = true

	n, e := h.ClientCount()
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, e)
}
