// Package channels maps broadcast channels to publishing categories and
// listens for new channel posts over the bot API. Only posts from mapped
// channels that carry both a photo and a caption are handed downstream;
// everything else is filtered here with a trace line at most.
package channels
