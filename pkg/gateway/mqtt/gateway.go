// Package mqtt bridges a relay board onto an MQTT broker: raw command
// lines arrive on <prefix>/cmd, responses go to <prefix>/resp, and the
// relay pattern is published periodically on <prefix>/status.
package mqtt

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/picorelay/relay.go/pkg/host"
	"github.com/picorelay/relay.go/pkg/proto"
)

// ClientOptionsFromURL builds paho options from a broker URL of the form
// scheme://[user[:pass]@]host[:port][/topic-prefix][?client-id=...].
// An empty or mqtt scheme maps to tcp. The path becomes the topic
// prefix.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	if u.Scheme == "" || u.Scheme == "mqtt" {
		server = "tcp"
	} else {
		server = u.Scheme
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// Gateway bridges one controller to the broker. It implements
// framework.Runnable.
type Gateway struct {
	Controller     *host.Controller
	TopicPrefix    string
	StatusInterval time.Duration

	client paho.Client
}

// NewGateway creates a gateway from a config and a connected controller.
// When cfg.TopicPrefix is empty the board UID is used as relay/<uid>.
func NewGateway(cfg Config, c *host.Controller) (*Gateway, error) {
	opts, urlPrefix, err := ClientOptionsFromURL(cfg.BrokerURL)
	if err != nil {
		return nil, err
	}
	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = urlPrefix
	}
	if prefix == "" {
		uid, err := c.UID()
		if err != nil {
			return nil, err
		}
		prefix = "relay/" + uid
	}
	g := &Gateway{
		Controller:     c,
		TopicPrefix:    prefix,
		StatusInterval: cfg.StatusInterval(),
	}
	g.client = paho.NewClient(opts)
	return g, nil
}

// topic joins the prefix with a suffix.
func (g *Gateway) topic(suffix string) string {
	return g.TopicPrefix + "/" + suffix
}

// Run connects to the broker and serves until ctx is canceled.
func (g *Gateway) Run(ctx context.Context) error {
	token := g.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	defer g.client.Disconnect(250)

	token = g.client.Subscribe(g.topic("cmd"), 0, func(_ paho.Client, msg paho.Message) {
		g.handleCommand(string(msg.Payload()))
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	glog.V(1).Infof("serving %s/cmd", g.TopicPrefix)

	if err := g.publishStatus(); err != nil {
		glog.Errorf("publish status: %v", err)
	}
	var tick <-chan time.Time
	if g.StatusInterval > 0 {
		ticker := time.NewTicker(g.StatusInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			if err := g.publishStatus(); err != nil {
				glog.Errorf("publish status: %v", err)
			}
		}
	}
}

// handleCommand forwards one raw line to the board and publishes the
// response. Lines that fail to parse are answered locally with the same
// error the board would produce, without occupying the serial link.
func (g *Gateway) handleCommand(line string) {
	cmd, code := proto.ParseLine(line)
	if code != "" {
		g.publish("resp", code.Response())
		return
	}
	resp, err := g.Controller.Do(cmd)
	if err != nil {
		var ce *host.CommandError
		if errors.As(err, &ce) {
			g.publish("resp", ce.Code.Response())
			return
		}
		glog.Errorf("forward %q: %v", cmd.Format(), err)
		g.publish("resp", proto.ErrTimeout.Response())
		return
	}
	if resp.Data == "" {
		g.publish("resp", proto.SuccessResponse)
		return
	}
	g.publish("resp", resp.Data)
}

func (g *Gateway) publishStatus() error {
	pattern, err := g.Controller.StatusPattern()
	if err != nil {
		return err
	}
	g.publish("status", pattern)
	return nil
}

func (g *Gateway) publish(suffix, payload string) {
	token := g.client.Publish(g.topic(suffix), 0, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		glog.Errorf("publish %s: %v", g.topic(suffix), err)
	}
}
