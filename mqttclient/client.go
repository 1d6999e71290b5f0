package mqttclient

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"sensegrid-server/services"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Client owns the single broker connection and the inbound message
// channel. It is constructed once at process start and torn down on
// shutdown; no connection state lives outside it.
//
// Broker callbacks only enqueue; a dedicated consumer goroutine
// drains the channel and processes each message to completion before
// dequeuing the next, so lifecycle transitions are serialized.
type Client struct {
	broker   string
	port     int
	prefix   string
	clientID string

	dispatcher *services.Dispatcher

	inner    mqtt.Client
	messages chan services.InboundMessage
	done     chan struct{}

	mu        sync.Mutex
	connected bool
}

func New(broker string, port int, prefix, clientID string, dispatcher *services.Dispatcher) *Client {
	return &Client{
		broker:     broker,
		port:       port,
		prefix:     prefix,
		clientID:   clientID,
		dispatcher: dispatcher,
		messages:   make(chan services.InboundMessage, 256),
		done:       make(chan struct{}),
	}
}

// Start connects to the broker and launches the consumer loop.
func (c *Client) Start() error {
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", c.broker, c.port)).
		SetClientID(c.clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost).
		SetDefaultPublishHandler(c.onMessage)

	c.inner = mqtt.NewClient(opts)

	// The consumer must be running before the first connect attempt:
	// connect retry keeps working in the background after a timeout
	// here, and a later subscribe with nobody draining the channel
	// would wedge paho's handler goroutine.
	go c.consume()

	log.Printf("Connecting to MQTT broker at %s:%d", c.broker, c.port)
	token := c.inner.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return errors.New("timed out connecting to MQTT broker")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return nil
}

func (c *Client) onConnect(client mqtt.Client) {
	log.Println("Connected to MQTT broker successfully")
	c.setConnected(true)

	statusTopic := fmt.Sprintf("%s/+/status", c.prefix)
	sensorTopic := fmt.Sprintf("%s/+/sensors/#", c.prefix)
	for _, topic := range []string{statusTopic, sensorTopic} {
		if token := client.Subscribe(topic, 1, c.onMessage); token.Wait() && token.Error() != nil {
			log.Printf("Failed to subscribe to %s: %v", topic, token.Error())
		}
	}
	log.Printf("Subscribed to topics: %s and %s", statusTopic, sensorTopic)
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	log.Printf("WARNING: disconnected from MQTT broker: %v", err)
	c.setConnected(false)
}

// onMessage runs on paho's handler goroutine. It only enqueues; a
// slow store shows up as a blocked enqueue once the channel fills,
// which is the intended (no-backpressure, serialized) behavior.
func (c *Client) onMessage(_ mqtt.Client, msg mqtt.Message) {
	inbound := services.InboundMessage{
		Topic:    msg.Topic(),
		Payload:  msg.Payload(),
		Retained: msg.Retained(),
	}
	select {
	case c.messages <- inbound:
	case <-c.done:
	}
}

func (c *Client) consume() {
	for {
		select {
		case msg := <-c.messages:
			c.dispatcher.Dispatch(msg)
		case <-c.done:
			return
		}
	}
}

// Publish sends an administrative downlink message.
func (c *Client) Publish(topic, payload string) error {
	if c.inner == nil || !c.isConnected() {
		return errors.New("cannot publish: MQTT client not connected")
	}
	token := c.inner.Publish(topic, 1, false, payload)
	token.Wait()
	return token.Error()
}

// Stop tears the client down: consumer loop first, then the broker
// connection.
func (c *Client) Stop() {
	close(c.done)
	if c.inner != nil {
		c.inner.Disconnect(250)
	}
	log.Println("MQTT client stopped")
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = v
}

func (c *Client) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
