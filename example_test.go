package lattice_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/recognizer"
)

func Example() {
	loader := memory.NewLoader(map[string]string{
		"GetTime":  "public <GetTime> = what time is it | tell me the time;",
		"SetLight": "public <SetLight> = turn ($state){state} the light;",
	}).WithSlot("state", "on", "off")

	res, err := lattice.Compile(context.Background(), loader, lattice.WithSlots("memory", loader))
	if err != nil {
		fmt.Println(err)
		return
	}

	rec := lattice.Open(res.Merged, lattice.WithRecognizer(recognizer.Config{Lower: true}))
	got, _ := rec.Recognize("Turn OFF the light")
	fmt.Println(got.Intent.Name, got.Slots["state"], got.Intent.Confidence)
	// Output: SetLight off 1
}

func Example_partialBuild() {
	loader := memory.NewLoader(map[string]string{
		"GetTime": "public <GetTime> = what time is it;",
		"Broken":  "public <Broken> = (unbalanced;",
	})

	res, err := lattice.Compile(context.Background(), loader)
	var be *lattice.BuildError
	if errors.As(err, &be) {
		fmt.Println("failed:", be.Grammars())
	}
	fmt.Println("compiled:", len(res.Intents))
	// Output:
	// failed: [Broken]
	// compiled: 1
}

func Example_artifactStore() {
	ctx := context.Background()
	loader := memory.NewLoader(map[string]string{
		"GetTime": "public <GetTime> = what time is it;",
	})
	res, _ := lattice.Compile(ctx, loader)

	store := memory.NewStore()
	_ = store.Save(ctx, "intent", res.Merged)

	rec, err := lattice.Load(ctx, store, "intent")
	if err != nil {
		fmt.Println(err)
		return
	}
	got, _ := rec.Recognize("what time is it")
	fmt.Println(got.Intent.Name, got.Text)
	// Output: GetTime what time is it
}
