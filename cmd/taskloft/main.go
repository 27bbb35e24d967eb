// taskloft is the single-session variant: an in-memory task list with no
// accounts, no network and no persistence.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/taskloft/taskloft-be/internal/cli"
	"github.com/taskloft/taskloft-be/internal/models"
	"github.com/taskloft/taskloft-be/internal/services"
	"github.com/taskloft/taskloft-be/internal/store"
)

func main() {
	st := store.NewMemory()

	// One implicit local owner; the ownership scoping stays in force even
	// though this session never has a second user.
	owner := models.User{Username: "local", Email: "local@taskloft", IsActive: true}
	if err := st.InsertUser(context.Background(), &owner); err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed session owner: %v\n", err)
		os.Exit(1)
	}

	svc := services.NewTaskService(st, nil, zerolog.Nop())

	if err := cli.Run(svc, owner.ID); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
