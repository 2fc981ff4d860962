package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	orderreaderv1 "github.com/lucaCambi77/valr/internal/domain/order-reader/v1"
	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// generateCommands creates count place commands around basePrice, with roughly
// one in ten followed by a cancel of an earlier order.
func generateCommands(count int, pair string, users []string, basePrice, priceSpread decimal.Decimal) []orderreaderv1.Command {
	commands := make([]orderreaderv1.Command, 0, count)
	var placed []string

	for i := 0; i < count; i++ {
		if len(placed) > 0 && rand.Float64() < 0.1 {
			idx := rand.Intn(len(placed))
			commands = append(commands, orderreaderv1.Command{
				Type:    orderreaderv1.CommandCancel,
				OrderID: placed[idx],
				Pair:    pair,
			})
			placed = append(placed[:idx], placed[idx+1:]...)
			continue
		}

		side := orderbookv1.SideSell
		offset := priceSpread.Mul(decimal.NewFromFloat(rand.Float64() * 0.8))
		price := basePrice.Add(offset)
		if rand.Float64() < 0.5 {
			side = orderbookv1.SideBuy
			price = basePrice.Sub(offset)
		}
		if !price.IsPositive() {
			price = basePrice
		}

		// Size between 0.001 and 1.0
		quantity := decimal.NewFromFloat(0.001 + rand.Float64()*0.999).Round(3)

		id := ulid.Make().String()
		placed = append(placed, id)
		commands = append(commands, orderreaderv1.Command{
			Type:     orderreaderv1.CommandPlace,
			ID:       id,
			Pair:     pair,
			Side:     side,
			Price:    price.Round(1),
			Quantity: quantity,
			UserID:   users[rand.Intn(len(users))],
		})
	}

	return commands
}

func main() {
	var (
		brokers     = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic       = flag.String("topic", "orders", "Kafka topic name")
		file        = flag.String("file", "", "JSON file with commands (optional, generates commands if not provided)")
		delay       = flag.Duration("delay", 100*time.Millisecond, "Delay between sending commands")
		count       = flag.Int("count", 1000, "Number of commands to generate")
		pair        = flag.String("pair", "BTCUSDC", "Currency pair of generated commands")
		users       = flag.String("users", "alice,bob", "Users placing generated orders (comma-separated)")
		basePrice   = flag.Float64("base-price", 20000, "Base price for orders")
		priceSpread = flag.Float64("price-spread", 200.0, "Price spread range")
	)
	flag.Parse()

	// Create Kafka writer
	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:        *topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	defer writer.Close()

	ctx := context.Background()

	var commands []orderreaderv1.Command
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read file %s: %v", *file, err)
		}
		if err := json.Unmarshal(data, &commands); err != nil {
			log.Fatalf("Failed to parse JSON from file: %v", err)
		}
		log.Printf("Loaded %d commands from file: %s", len(commands), *file)
	} else {
		log.Printf("Generating %d commands...", *count)
		commands = generateCommands(*count, *pair, strings.Split(*users, ","),
			decimal.NewFromFloat(*basePrice), decimal.NewFromFloat(*priceSpread))
	}

	log.Printf("Sending commands to Kafka broker: %s, topic: %s", *brokers, *topic)

	places, cancels := 0, 0
	for i, cmd := range commands {
		value, err := cmd.ToBytes()
		if err != nil {
			log.Printf("Failed to marshal command %d: %v", i+1, err)
			continue
		}

		// Keyed by pair so every command of a pair lands on one partition, in order.
		msg := kafka.Message{
			Key:   []byte(cmd.Pair),
			Value: value,
			Time:  time.Now(),
		}
		if err := writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("Failed to send command %d: %v", i+1, err)
			continue
		}

		if cmd.Type == orderreaderv1.CommandCancel {
			cancels++
		} else {
			places++
		}

		if (i+1)%100 == 0 || i == len(commands)-1 {
			log.Printf("Sent command %d/%d: %s %s %s %s @ %s", i+1, len(commands),
				cmd.Type, cmd.Pair, cmd.Side, cmd.Quantity, cmd.Price)
		}

		if i < len(commands)-1 {
			time.Sleep(*delay)
		}
	}

	log.Printf("--- Summary ---")
	log.Printf("Total Commands: %d", len(commands))
	log.Printf("Place Commands: %d", places)
	log.Printf("Cancel Commands: %d", cancels)
}
