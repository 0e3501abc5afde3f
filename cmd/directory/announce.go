package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/0xsj/overwatch-pkg/log"
	"github.com/0xsj/overwatch-pkg/types"

	natsadapter "github.com/0xsj/overwatch-directory/internal/adapter/outbound/nats"
	"github.com/0xsj/overwatch-directory/internal/config"
	"github.com/0xsj/overwatch-directory/internal/domain/event"
	"github.com/0xsj/overwatch-directory/internal/domain/model"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/messaging"
)

func newAnnounceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "announce",
		Short: "Publish a service lifecycle event",
		Long: `Publish a service event on NATS, as a registering service would.
Useful for seeding a development directory.`,
	}

	cmd.AddCommand(
		newAnnounceRegisterCmd(),
		newAnnounceUpdateCmd(),
		newAnnounceDrainCmd(),
		newAnnounceDeregisterCmd(),
	)
	return cmd
}

func newAnnounceRegisterCmd() *cobra.Command {
	var id, name, did, endpoint, version string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Announce a new service",
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceID := types.NewID()
			if id != "" {
				parsed, err := types.ParseID(id)
				if err != nil {
					return fmt.Errorf("invalid --id: %w", err)
				}
				serviceID = parsed
			}
			return publish(cmd, event.NewServiceRegistered(serviceID, name, did, endpoint, version))
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "service ID (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "unique service name")
	cmd.Flags().StringVar(&did, "did", "", "service DID")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "host:port")
	cmd.Flags().StringVar(&version, "version", "", "service version")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("did")
	_ = cmd.MarkFlagRequired("endpoint")
	return cmd
}

func newAnnounceUpdateCmd() *cobra.Command {
	var id, endpoint, version string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Announce a new endpoint or version",
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceID, err := types.ParseID(id)
			if err != nil {
				return fmt.Errorf("invalid --id: %w", err)
			}
			return publish(cmd, event.NewServiceUpdated(serviceID, endpoint, version))
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "service ID")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "host:port")
	cmd.Flags().StringVar(&version, "version", "", "service version")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("endpoint")
	return cmd
}

func newAnnounceDrainCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Announce that a service is draining",
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceID, err := types.ParseID(id)
			if err != nil {
				return fmt.Errorf("invalid --id: %w", err)
			}
			return publish(cmd, event.NewServiceDraining(serviceID))
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "service ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newAnnounceDeregisterCmd() *cobra.Command {
	var id, reason string

	cmd := &cobra.Command{
		Use:   "deregister",
		Short: "Announce that a service left the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceID, err := types.ParseID(id)
			if err != nil {
				return fmt.Errorf("invalid --id: %w", err)
			}
			return publish(cmd, event.NewServiceDeregistered(serviceID, reason))
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "service ID")
	cmd.Flags().StringVar(&reason, "reason", "", "why the service left")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func publish(cmd *cobra.Command, evt event.Event) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := log.NewPretty(log.DefaultConfig())

	conn, err := connectNATS(cfg.NATS, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to nats: %w", err)
	}
	defer conn.Close()

	publisher := natsadapter.NewEventPublisher(conn, cfg.NATS.SubjectPrefix)
	if err := announce(cmd.Context(), publisher, evt, cmd.OutOrStdout()); err != nil {
		return err
	}
	if err := conn.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

// announce validates evt the way the directory will and publishes it.
func announce(ctx context.Context, publisher messaging.EventPublisher, evt event.Event, w io.Writer) error {
	if reg, ok := evt.(event.ServiceRegistered); ok {
		if _, err := model.NewService(reg.ServiceID, reg.Name, reg.DID, reg.Endpoint, reg.Version); err != nil {
			return err
		}
	}

	if err := publisher.Publish(ctx, evt); err != nil {
		return err
	}

	fmt.Fprintf(w, "published %s for %s\n", evt.EventType(), evt.AggregateID())
	return nil
}
