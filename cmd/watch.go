package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/smartpark/spotsim/config"
	"github.com/smartpark/spotsim/core/model"
	"github.com/smartpark/spotsim/infra/logger"
	"github.com/smartpark/spotsim/infra/mqtt"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Subscribe to the status topic tree and print events",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// A distinct client id lets watch run next to the simulator itself.
	watchCfg := cfg.MQTT
	watchCfg.ClientID = fmt.Sprintf("%s-watch-%s", watchCfg.ClientID, uuid.NewString()[:8])
	watchCfg.LWTTopic = ""

	client, err := mqtt.NewPahoClient(watchCfg)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Close()

	logg := logger.New("watch")
	handler := func(_ paho.Client, msg paho.Message) {
		var ev model.StatusEvent
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			logg.Warnf("decode %s: %v", msg.Topic(), err)
			return
		}
		fmt.Printf("%s | %s => %s (distance=%.1fcm)\n", ev.Timestamp, ev.SpotID, ev.Status, ev.DistanceCm)
	}
	if err := client.Subscribe(mqtt.StatusWildcard(cfg.MQTT.TopicPrefix), cfg.Sim.QoS, handler); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
