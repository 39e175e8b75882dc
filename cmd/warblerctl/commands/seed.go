package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"warbler/internal/app"
)

type seedOptions struct {
	users           int
	followsPerUser  int
	messagesPerUser int
	bcryptCost      int
	prefix          string
	workers         int
}

type seedResult struct {
	users    int64
	follows  int64
	messages int64
}

func newSeedCmd() *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with synthetic users, follows and messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := seed(cmd.Context(), rt.services(opts.bcryptCost), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded users=%d follows=%d messages=%d\n",
				result.users, result.follows, result.messages)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.users, "users", 100, "Number of users to create")
	cmd.Flags().IntVar(&opts.followsPerUser, "follows-per-user", 10, "Follow edges created per user")
	cmd.Flags().IntVar(&opts.messagesPerUser, "messages-per-user", 20, "Messages posted per user")
	cmd.Flags().IntVar(&opts.bcryptCost, "bcrypt-cost", bcrypt.MinCost, "bcrypt cost for seeded passwords")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "seed", "Username prefix")
	cmd.Flags().IntVar(&opts.workers, "workers", 8, "Concurrent workers")
	return cmd
}

// seed creates users first, then follows and messages. Users that already
// exist from an earlier run are reused.
func seed(ctx context.Context, services *app.Services, opts seedOptions) (seedResult, error) {
	var result seedResult
	if opts.users <= 0 {
		return result, nil
	}
	if opts.workers <= 0 {
		opts.workers = 1
	}

	ids := make([]uint, opts.users)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)
	for i := 0; i < opts.users; i++ {
		g.Go(func() error {
			username := fmt.Sprintf("%s_%d", opts.prefix, i)
			user, err := services.Auth.Signup(gctx, app.SignupInput{
				Username: username,
				Email:    username + "@example.com",
				Password: "password",
			})
			if errors.Is(err, app.ErrDuplicateKey) {
				existing, lookupErr := services.Auth.Authenticate(gctx, username, "password")
				if lookupErr != nil {
					return lookupErr
				}
				if existing == nil {
					return fmt.Errorf("user %s exists with a different password", username)
				}
				ids[i] = existing.ID
				return nil
			}
			if err != nil {
				return fmt.Errorf("signup %s failed: %w", username, err)
			}
			atomic.AddInt64(&result.users, 1)
			ids[i] = user.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)
	for i, id := range ids {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(uint64(id), uint64(i)))
			for _, j := range rng.Perm(len(ids))[:min(opts.followsPerUser, len(ids))] {
				if ids[j] == id {
					continue
				}
				err := services.Follows.Follow(gctx, id, ids[j])
				if errors.Is(err, app.ErrDuplicateEdge) {
					continue
				}
				if err != nil {
					return err
				}
				atomic.AddInt64(&result.follows, 1)
			}
			for m := 0; m < opts.messagesPerUser; m++ {
				if _, err := services.Messages.Post(gctx, id, fmt.Sprintf("message %d from %s_%d", m, opts.prefix, i)); err != nil {
					return err
				}
				atomic.AddInt64(&result.messages, 1)
			}
			return nil
		})
	}
	return result, g.Wait()
}
