// Command weave runs a small collaboration demo: two actors each author
// local changes against their own copy of a document, exchange the
// resulting changes, and converge; a third replica then joins late and
// catches up by diffing against a peer instead of replaying history.
package main

import (
	"fmt"
	"log"

	"weave/action"
	"weave/actor"
	"weave/document"
	"weave/logging"
	"weave/objid"
	"weave/value"
)

func main() {
	logging.SetLevel("info")

	alice := actor.New()
	bob := actor.New()

	aliceDoc := document.Init()
	bobDoc := document.Init()

	aliceDoc, _, titleChange, err := document.ApplyLocalChange(aliceDoc, document.LocalChangeRequest{
		Actor:   alice,
		Message: "set title",
		Ops: []document.OpIntent{
			{Obj: objid.Root, IsStrKey: true, KeyStr: "title", Action: action.Set, Value: value.String("Q3 roadmap")},
		},
	})
	if err != nil {
		log.Fatalf("alice: set title: %v", err)
	}

	bobDoc, _, authorsChange, err := document.ApplyLocalChange(bobDoc, document.LocalChangeRequest{
		Actor:   bob,
		Message: "add author",
		Ops: []document.OpIntent{
			{Obj: objid.Root, IsStrKey: true, KeyStr: "owner", Action: action.Set, Value: value.String("bob")},
		},
	})
	if err != nil {
		log.Fatalf("bob: set owner: %v", err)
	}

	aliceDoc, patch, err := document.ApplyChanges(aliceDoc, [][]byte{authorsChange})
	if err != nil {
		log.Fatalf("alice: apply bob's change: %v", err)
	}
	bobDoc, _, err = document.ApplyChanges(bobDoc, [][]byte{titleChange})
	if err != nil {
		log.Fatalf("bob: apply alice's change: %v", err)
	}

	fmt.Println("converged via direct exchange:")
	fmt.Printf("  alice heads: %v\n", aliceDoc.Heads())
	fmt.Printf("  bob heads:   %v\n", bobDoc.Heads())
	fmt.Printf("  patch props on root: %d\n", len(patch.Props))

	// A third replica joins late and catches up via GetChangesAdded rather
	// than replaying the individual changes above.
	carolDoc := document.Init()
	missing, err := document.GetChangesAdded(aliceDoc, carolDoc)
	if err != nil {
		log.Fatalf("diff carol against alice: %v", err)
	}
	carolDoc, _, err = document.ApplyChanges(carolDoc, missing)
	if err != nil {
		log.Fatalf("carol: catch up: %v", err)
	}

	stats := carolDoc.Stats()
	fmt.Printf("carol caught up: %d ops from %d actors across %d heads\n", stats.NumOps, stats.NumActors, stats.NumHeads)

	final, err := document.GetPatch(carolDoc)
	if err != nil {
		log.Fatalf("carol: get patch: %v", err)
	}
	for key, conflicts := range final.Props {
		for opID, pv := range conflicts {
			fmt.Printf("  root.%s (%s) = %v\n", key, opID, pv.Value.Native())
		}
	}
}
