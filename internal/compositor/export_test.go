package compositor

var LogoResampleEdge = logoResampleEdge
