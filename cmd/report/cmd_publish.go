package main

import (
	"errors"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/nabr-climate-report/internal/adapter/kafka"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish every annotated observation to the Kafka sink topic",
	RunE:  runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if !a.cfg.KafkaEnabled {
		return errors.New("KAFKA_BROKERS is required to publish")
	}

	writer := kafkaadapter.NewWriter(a.cfg, a.logger)
	defer func() {
		if err := writer.Close(); err != nil {
			a.logger.Error("kafka writer close error", "error", err)
		}
	}()

	sent, err := a.pipeline.Publish(cmd.Context(), writer)
	if err != nil {
		return err
	}
	a.logger.Info("publish complete", "topic", a.cfg.KafkaSinkTopic, "observations", sent)
	return nil
}
