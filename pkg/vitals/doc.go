// Package vitals formats application-health telemetry into a canonical
// daily report and renders it as a block message for chat delivery.
//
// Quick start:
//
//	d := vitals.New(vitals.WithTitle("Player Health Status"))
//
//	text := d.Format(records, vitals.Business{}, time.Now())
//	msg := d.Render(text, time.Now())
//	fmt.Println(msg.Fallback)
//
// Format and Render are pure transforms over their inputs: the same
// records and run date always produce the same text and blocks. A Digest
// is safe for concurrent use.
package vitals
