package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/exceleasy/pkg/configs"
	mq "github.com/yeisme/exceleasy/pkg/internal/storage/mq"
	"github.com/yeisme/exceleasy/pkg/queue"
)

// allTopics tail 全部文件主题.
const allTopics = "all"

var (
	eventsCmd = &cobra.Command{
		Use:   "events",
		Short: "File event related commands",
	}

	eventsTopicsCmd = &cobra.Command{
		Use:     "topics",
		Short:   "list file event topics",
		Aliases: []string{"ls"},
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range queue.FileTopics {
				fmt.Fprintln(cmd.OutOrStdout(), " - "+t)
			}
		},
	}

	eventsTailCmd = &cobra.Command{
		Use:       "tail <topic|all>",
		Short:     "print file events as they are published",
		Args:      cobra.ExactArgs(1),
		ValidArgs: append([]string{allTopics}, queue.FileTopics...),
		PreRunE:   loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			topics := []string{args[0]}
			if args[0] == allTopics {
				topics = queue.FileTopics
			} else if !queue.IsFileTopic(args[0]) {
				return fmt.Errorf("unknown topic %q", args[0])
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := mq.New(ctx, &configs.GetConfig().MQ, false)
			if err != nil {
				return err
			}
			defer client.Close() //nolint:errcheck

			var (
				wg  sync.WaitGroup
				out sync.Mutex
			)

			for _, topic := range topics {
				ch, err := client.Subscribe(ctx, topic)
				if err != nil {
					return err
				}

				wg.Add(1)

				go func() {
					defer wg.Done()

					for msg := range ch {
						line := formatEvent(msg)

						out.Lock()
						fmt.Fprintln(cmd.OutOrStdout(), line)
						out.Unlock()

						msg.Ack()
					}
				}()
			}

			wg.Wait()

			return nil
		},
	}
)

// formatEvent 单行输出事件信封，无法解析时输出原文.
func formatEvent(msg *message.Message) string {
	env, err := queue.ParseWatermillMessage[map[string]any](msg)
	if err != nil {
		return string(msg.Payload)
	}

	b, err := sonic.ConfigStd.Marshal(env)
	if err != nil {
		return string(msg.Payload)
	}

	return string(b)
}

// registerEventsCommands 注册事件相关命令.
func registerEventsCommands() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTopicsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
