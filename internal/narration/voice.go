package narration

// Voice describes one installed speech voice.
type Voice struct {
	Name string
	Lang string

	// LocalService is true for voices synthesized on this machine rather
	// than by a network service.
	LocalService bool
	Default      bool
}

// SelectVoice picks a voice: the first preferred name that is installed
// (in preference order), else the first network voice, else the engine
// default, else the first voice. ok is false when voices is empty.
func SelectVoice(voices []Voice, preferred []string) (v Voice, ok bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	for _, name := range preferred {
		for _, v := range voices {
			if v.Name == name {
				return v, true
			}
		}
	}
	for _, v := range voices {
		if !v.LocalService {
			return v, true
		}
	}
	for _, v := range voices {
		if v.Default {
			return v, true
		}
	}
	return voices[0], true
}
