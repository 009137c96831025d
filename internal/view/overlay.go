package view

// Overlay is the letter modal visibility. Opening an open letter or closing a closed one does nothing.
type Overlay struct {
	visible bool
}

// Open shows the letter and reports whether it was hidden before.
func (o *Overlay) Open() bool {
	if o.visible {
		return false
	}
	o.visible = true
	return true
}

// Close hides the letter and reports whether it was visible before.
func (o *Overlay) Close() bool {
	if !o.visible {
		return false
	}
	o.visible = false
	return true
}

func (o *Overlay) Visible() bool {
	return o.visible
}
